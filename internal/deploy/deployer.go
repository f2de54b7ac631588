// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	cfnv2 "github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/gofrs/flock"

	"github.com/stackctl/stackctl/internal/log"
)

const (
	changeSetWaitTimeout = 5 * time.Minute
	stackWaitTimeout     = 60 * time.Minute
	lockRetryInterval    = 500 * time.Millisecond
)

// API is the slice of the CloudFormation surface the deployer needs. The
// embedded SDK interfaces keep the waiters usable against fakes.
type API interface {
	cfnv2.DescribeStacksAPIClient
	cfnv2.DescribeChangeSetAPIClient
	CreateChangeSet(ctx context.Context, params *cfnv2.CreateChangeSetInput, optFns ...func(*cfnv2.Options)) (*cfnv2.CreateChangeSetOutput, error)
	ExecuteChangeSet(ctx context.Context, params *cfnv2.ExecuteChangeSetInput, optFns ...func(*cfnv2.Options)) (*cfnv2.ExecuteChangeSetOutput, error)
	DeleteChangeSet(ctx context.Context, params *cfnv2.DeleteChangeSetInput, optFns ...func(*cfnv2.Options)) (*cfnv2.DeleteChangeSetOutput, error)
	ListChangeSets(ctx context.Context, params *cfnv2.ListChangeSetsInput, optFns ...func(*cfnv2.Options)) (*cfnv2.ListChangeSetsOutput, error)
	GetTemplate(ctx context.Context, params *cfnv2.GetTemplateInput, optFns ...func(*cfnv2.Options)) (*cfnv2.GetTemplateOutput, error)
}

// Input is one resolved deployment request.
type Input struct {
	StackName    string
	TemplateBody []byte
	Parameters   map[string]string
	Capabilities []string

	// Wait blocks until the stack operation completes.
	Wait bool
}

// Result reports what a deployment did.
type Result struct {
	StackName     string `json:"stackName"`
	ChangeSetName string `json:"changeSetName"`
	Operation     string `json:"operation"` // CREATE or UPDATE
	NoChanges     bool   `json:"noChanges"`
}

// StackOutput is one deployed output with its export name.
type StackOutput struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Export      string `json:"export,omitempty"`
	Description string `json:"description,omitempty"`
}

// Deployer drives changeset-based stack deployments.
type Deployer struct {
	API API

	// LockDir holds per-stack lock files. Empty means the OS temp dir.
	LockDir string
}

// Deploy creates and executes a changeset for the stack. Deployments of the
// same stack from the same host are serialized through a file lock. A
// changeset that contains no changes is success.
func (d *Deployer) Deploy(ctx context.Context, in Input) (Result, error) {
	unlock, err := d.lockStack(ctx, in.StackName)
	if err != nil {
		return Result{}, err
	}
	defer unlock()

	operation := types.ChangeSetTypeCreate
	if exists, err := d.stackExists(ctx, in.StackName); err != nil {
		return Result{}, err
	} else if exists {
		operation = types.ChangeSetTypeUpdate
	}

	changeSetName := fmt.Sprintf("stackctl-%d", time.Now().Unix())
	result := Result{
		StackName:     in.StackName,
		ChangeSetName: changeSetName,
		Operation:     string(operation),
	}

	params := make([]types.Parameter, 0, len(in.Parameters))
	keys := make([]string, 0, len(in.Parameters))
	for key := range in.Parameters {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		params = append(params, types.Parameter{
			ParameterKey:   awsv2.String(key),
			ParameterValue: awsv2.String(in.Parameters[key]),
		})
	}

	capabilities := make([]types.Capability, 0, len(in.Capabilities))
	for _, c := range in.Capabilities {
		capabilities = append(capabilities, types.Capability(c))
	}

	log.Infof("creating changeset %s for stack %s (%s)", changeSetName, in.StackName, operation)
	_, err = d.API.CreateChangeSet(ctx, &cfnv2.CreateChangeSetInput{
		StackName:     awsv2.String(in.StackName),
		ChangeSetName: awsv2.String(changeSetName),
		ChangeSetType: operation,
		TemplateBody:  awsv2.String(string(in.TemplateBody)),
		Parameters:    params,
		Capabilities:  capabilities,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to create changeset: %w", err)
	}

	describeIn := &cfnv2.DescribeChangeSetInput{
		StackName:     awsv2.String(in.StackName),
		ChangeSetName: awsv2.String(changeSetName),
	}

	waiter := cfnv2.NewChangeSetCreateCompleteWaiter(d.API)
	if err := waiter.Wait(ctx, describeIn, changeSetWaitTimeout); err != nil {
		// A changeset with nothing to change fails creation; treat that as a
		// clean no-op rather than an error.
		desc, derr := d.API.DescribeChangeSet(ctx, describeIn)
		if derr == nil && noChanges(desc) {
			log.Infof("stack %s is already up to date", in.StackName)
			_, _ = d.API.DeleteChangeSet(ctx, &cfnv2.DeleteChangeSetInput{
				StackName:     awsv2.String(in.StackName),
				ChangeSetName: awsv2.String(changeSetName),
			})
			result.NoChanges = true
			return result, nil
		}
		if derr == nil && desc.StatusReason != nil {
			return Result{}, fmt.Errorf("changeset failed: %s", *desc.StatusReason)
		}
		return Result{}, fmt.Errorf("changeset did not stabilize: %w", err)
	}

	log.Infof("executing changeset %s", changeSetName)
	_, err = d.API.ExecuteChangeSet(ctx, &cfnv2.ExecuteChangeSetInput{
		StackName:     awsv2.String(in.StackName),
		ChangeSetName: awsv2.String(changeSetName),
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to execute changeset: %w", err)
	}

	if in.Wait {
		stacksIn := &cfnv2.DescribeStacksInput{StackName: awsv2.String(in.StackName)}
		if operation == types.ChangeSetTypeCreate {
			w := cfnv2.NewStackCreateCompleteWaiter(d.API)
			if err := w.Wait(ctx, stacksIn, stackWaitTimeout); err != nil {
				return Result{}, fmt.Errorf("stack creation did not complete: %w", err)
			}
		} else {
			w := cfnv2.NewStackUpdateCompleteWaiter(d.API)
			if err := w.Wait(ctx, stacksIn, stackWaitTimeout); err != nil {
				return Result{}, fmt.Errorf("stack update did not complete: %w", err)
			}
		}
		log.Infof("stack %s %s complete", in.StackName, strings.ToLower(string(operation)))
	}

	return result, nil
}

// Outputs returns the deployed stack's outputs, sorted by key.
func (d *Deployer) Outputs(ctx context.Context, stackName string) ([]StackOutput, error) {
	resp, err := d.API.DescribeStacks(ctx, &cfnv2.DescribeStacksInput{
		StackName: awsv2.String(stackName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe stack %s: %w", stackName, err)
	}
	if len(resp.Stacks) == 0 {
		return nil, fmt.Errorf("stack %s not found", stackName)
	}

	outputs := make([]StackOutput, 0, len(resp.Stacks[0].Outputs))
	for _, o := range resp.Stacks[0].Outputs {
		outputs = append(outputs, StackOutput{
			Key:         awsv2.ToString(o.OutputKey),
			Value:       awsv2.ToString(o.OutputValue),
			Export:      awsv2.ToString(o.ExportName),
			Description: awsv2.ToString(o.Description),
		})
	}
	sort.Slice(outputs, func(i, j int) bool { return outputs[i].Key < outputs[j].Key })
	return outputs, nil
}

// DeployedTemplate fetches the template body the stack was deployed with.
func (d *Deployer) DeployedTemplate(ctx context.Context, stackName string) ([]byte, error) {
	resp, err := d.API.GetTemplate(ctx, &cfnv2.GetTemplateInput{
		StackName:     awsv2.String(stackName),
		TemplateStage: types.TemplateStageOriginal,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get template for stack %s: %w", stackName, err)
	}
	return []byte(awsv2.ToString(resp.TemplateBody)), nil
}

// ChangeSets lists the stack's changesets, newest first.
func (d *Deployer) ChangeSets(ctx context.Context, stackName string) ([]types.ChangeSetSummary, error) {
	var summaries []types.ChangeSetSummary
	var token *string
	for {
		resp, err := d.API.ListChangeSets(ctx, &cfnv2.ListChangeSetsInput{
			StackName: awsv2.String(stackName),
			NextToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list changesets for stack %s: %w", stackName, err)
		}
		summaries = append(summaries, resp.Summaries...)
		if resp.NextToken == nil {
			break
		}
		token = resp.NextToken
	}

	sort.Slice(summaries, func(i, j int) bool {
		ti, tj := summaries[i].CreationTime, summaries[j].CreationTime
		if ti == nil || tj == nil {
			return tj == nil
		}
		return ti.After(*tj)
	})
	return summaries, nil
}

// stackExists reports whether the stack exists in a state a changeset can
// update. Review-in-progress stacks have never been executed and must be
// recreated.
func (d *Deployer) stackExists(ctx context.Context, stackName string) (bool, error) {
	resp, err := d.API.DescribeStacks(ctx, &cfnv2.DescribeStacksInput{
		StackName: awsv2.String(stackName),
	})
	if err != nil {
		// The control plane reports a missing stack as a validation error,
		// not a typed not-found.
		if strings.Contains(err.Error(), "does not exist") {
			return false, nil
		}
		return false, fmt.Errorf("failed to describe stack %s: %w", stackName, err)
	}
	if len(resp.Stacks) == 0 {
		return false, nil
	}
	return resp.Stacks[0].StackStatus != types.StackStatusReviewInProgress, nil
}

// lockStack serializes deployments per stack via a file lock.
func (d *Deployer) lockStack(ctx context.Context, stackName string) (func(), error) {
	dir := d.LockDir
	if dir == "" {
		dir = os.TempDir()
	}

	lock := flock.New(filepath.Join(dir, "stackctl-"+sanitize(stackName)+".lock"))
	ok, err := lock.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		return nil, fmt.Errorf("failed to lock stack %s: %w", stackName, err)
	}
	if !ok {
		return nil, fmt.Errorf("stack %s is locked by another deployment", stackName)
	}
	log.Debugf("stack lock acquired: path=%s", lock.Path())

	return func() {
		if err := lock.Unlock(); err != nil {
			log.Warnf("failed to release stack lock: err=%v", err)
		}
	}, nil
}

// noChanges recognizes the changeset failure reason for an up-to-date stack.
func noChanges(desc *cfnv2.DescribeChangeSetOutput) bool {
	if desc.Status != types.ChangeSetStatusFailed {
		return false
	}
	reason := awsv2.ToString(desc.StatusReason)
	return strings.Contains(reason, "didn't contain changes") ||
		strings.Contains(reason, "No updates are to be performed")
}

// sanitize makes a stack name safe for a file name.
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
