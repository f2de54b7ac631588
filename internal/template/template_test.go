// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package template

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func loadFixture(t *testing.T, name string) *Template {
	t.Helper()
	tpl, err := Load(filepath.Join("testdata", name))
	require.NoError(t, err)
	return tpl
}

func TestLoad(t *testing.T) {
	tpl := loadFixture(t, "template.yaml")

	assert.Equal(t, "AWS::Serverless-2016-10-31", tpl.Transform)
	assert.Len(t, tpl.Resources, 16)
	assert.Len(t, tpl.Outputs, 16)
	assert.Len(t, tpl.Parameters, 12)

	// Globals applied to every function.
	assert.Equal(t, "python3.8", tpl.Globals.Function.Runtime)
	assert.Equal(t, 3008, tpl.Globals.Function.MemorySize)
	assert.Equal(t, 900, tpl.Globals.Function.Timeout)
	require.NotNil(t, tpl.Globals.Function.Environment)
	assert.Equal(t, Ref("PostgreSQLHost"),
		tpl.Globals.Function.Environment.Variables["POSTGRESQL_HOST"])

	res, ok := tpl.Resources["UpdateInternalUser"]
	require.True(t, ok)
	assert.Equal(t, FunctionResourceType, res.Type)
	assert.Equal(t, "lambda_function.lambda_handler", res.Properties.Handler)
	assert.Equal(t, []Expr{
		Ref("DatabasesLayerArn"),
		Ref("UtilsLayerArn"),
		Ref("RequestsLayerArn"),
	}, res.Properties.Layers)

	out, ok := tpl.Outputs["GetRolesArn"]
	require.True(t, ok)
	assert.Equal(t, Expr{Kind: ExprGetAtt, Target: "GetRoles.Arn"}, out.Value)
	assert.Equal(t, Sub("${AWS::StackName}-${EnvironmentName}-GetRolesArn"), out.Export.Name)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "nope.yaml"))
	assert.Error(t, err)
}

func TestFunctions(t *testing.T) {
	tpl := loadFixture(t, "template.yaml")

	views := tpl.Functions(map[string]string{
		"EnvironmentName":   "Dev",
		"PostgreSQLHost":    "db.example.internal",
		"DatabasesLayerArn": "arn:aws:lambda:us-east-1:111122223333:layer:databases:7",
		"UtilsLayerArn":     "arn:aws:lambda:us-east-1:111122223333:layer:utils:4",
		"RequestsLayerArn":  "arn:aws:lambda:us-east-1:111122223333:layer:requests:2",
	})
	require.Len(t, views, 16)

	// Sorted by logical ID.
	assert.Equal(t, "CreateIdentifiedUser", views[0].LogicalID)

	var update FunctionView
	for _, v := range views {
		if v.LogicalID == "UpdateInternalUser" {
			update = v
		}
	}
	require.NotEmpty(t, update.LogicalID)

	assert.Equal(t, "DevUpdateInternalUser", update.Name)
	assert.Equal(t, "python3.8", update.Runtime)
	assert.Equal(t, 3008, update.MemorySize)
	assert.Equal(t, 900, update.Timeout)
	assert.Equal(t, "src/aws_lambda_functions/update_internal_user", update.CodeUri)
	assert.Len(t, update.Layers, 3)
	assert.Equal(t, "arn:aws:lambda:us-east-1:111122223333:layer:utils:4", update.Layers[1])

	// Inherited globals plus the function's own identity-provider extras.
	assert.Equal(t, "db.example.internal", update.Environment["POSTGRESQL_HOST"])
	assert.Contains(t, update.Environment, "AUTH0_DOMAIN")
	assert.Contains(t, update.Environment, "AUTH0_CLIENT_SECRET")

	// Functions without extras only carry the globals.
	var roles FunctionView
	for _, v := range views {
		if v.LogicalID == "GetRoles" {
			roles = v
		}
	}
	assert.NotContains(t, roles.Environment, "AUTH0_DOMAIN")
	assert.Contains(t, roles.Exported, "GetRolesArn")
}

func TestRender(t *testing.T) {
	tpl := loadFixture(t, "template.yaml")

	body, err := tpl.Render()
	require.NoError(t, err)

	// Intrinsics stay symbolic in the rendered body.
	assert.Equal(t, "DatabasesLayerArn",
		gjson.GetBytes(body, "Resources.CreateInternalUser.Properties.Layers.0.Ref").String())
	assert.Equal(t, "${EnvironmentName}CreateInternalUser",
		gjson.GetBytes(body, "Resources.CreateInternalUser.Properties.FunctionName.Fn::Sub").String())
	assert.Equal(t, "GetRoles.Arn",
		gjson.GetBytes(body, "Outputs.GetRolesArn.Value.Fn::GetAtt").String())
	assert.Equal(t, float64(3008),
		gjson.GetBytes(body, "Globals.Function.MemorySize").Float())
}

func TestSetCodeUri(t *testing.T) {
	tpl := loadFixture(t, "template.yaml")

	require.NoError(t, tpl.SetCodeUri("GetRoles", "s3://artifacts/abc123.zip"))
	assert.Equal(t, "s3://artifacts/abc123.zip", tpl.Resources["GetRoles"].Properties.CodeUri)

	assert.Error(t, tpl.SetCodeUri("NoSuchResource", "s3://artifacts/def.zip"))
}

func TestGraph(t *testing.T) {
	tpl := loadFixture(t, "template.yaml")
	_, err := tpl.Graph()
	assert.NoError(t, err)
}

func TestGraphCycle(t *testing.T) {
	tpl := loadFixture(t, "cycle.yaml")
	_, err := tpl.Graph()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}
