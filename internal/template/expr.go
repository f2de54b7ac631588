// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ExprKind discriminates the intrinsic forms an Expr can hold.
type ExprKind int

const (
	// ExprEmpty is the zero Expr, produced by an absent field.
	ExprEmpty ExprKind = iota
	// ExprLiteral is a plain scalar (string or number).
	ExprLiteral
	// ExprRef is a !Ref / Ref: reference to a parameter or resource.
	ExprRef
	// ExprSub is a !Sub / Fn::Sub substitution template.
	ExprSub
	// ExprGetAtt is a !GetAtt / Fn::GetAtt attribute reference.
	ExprGetAtt
)

// subVarRegex matches ${Name} substitution variables inside a !Sub template.
// ${!Name} is the CloudFormation escape for a literal and is not a variable.
var subVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// Expr is a template value that may be a literal scalar or one of the
// intrinsic reference forms (!Ref, !Sub, !GetAtt). Both YAML short-tag and
// long-map forms are accepted. Marshaling always emits the long JSON form so
// the rendered template matches what the control plane stores.
type Expr struct {
	Kind    ExprKind
	Literal string // scalar value for ExprLiteral
	Target  string // referenced name for ExprRef; "Resource.Attribute" for ExprGetAtt
	Tmpl    string // substitution template for ExprSub
}

// Lit builds a literal Expr. Used by tests and by the packager when rewriting
// code locations.
func Lit(s string) Expr { return Expr{Kind: ExprLiteral, Literal: s} }

// Ref builds a reference Expr.
func Ref(target string) Expr { return Expr{Kind: ExprRef, Target: target} }

// Sub builds a substitution Expr.
func Sub(tmpl string) Expr { return Expr{Kind: ExprSub, Tmpl: tmpl} }

// IsZero reports whether the Expr came from an absent field.
func (e Expr) IsZero() bool { return e.Kind == ExprEmpty }

// UnmarshalYAML decodes scalar literals, the short-tag intrinsics emitted by
// authors (!Ref, !Sub, !GetAtt), and their long-map equivalents (Ref:,
// Fn::Sub:, Fn::GetAtt:).
func (e *Expr) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.Tag {
		case "!Ref":
			*e = Expr{Kind: ExprRef, Target: node.Value}
		case "!Sub":
			*e = Expr{Kind: ExprSub, Tmpl: node.Value}
		case "!GetAtt":
			*e = Expr{Kind: ExprGetAtt, Target: node.Value}
		default:
			*e = Expr{Kind: ExprLiteral, Literal: node.Value}
		}
		return nil

	case yaml.SequenceNode:
		// !GetAtt [Resource, Attribute] is the only sequence form we accept.
		if node.Tag == "!GetAtt" {
			var parts []string
			if err := node.Decode(&parts); err != nil {
				return err
			}
			*e = Expr{Kind: ExprGetAtt, Target: strings.Join(parts, ".")}
			return nil
		}
		return fmt.Errorf("line %d: unsupported sequence value", node.Line)

	case yaml.MappingNode:
		var m map[string]yaml.Node
		if err := node.Decode(&m); err != nil {
			return err
		}
		if len(m) != 1 {
			return fmt.Errorf("line %d: intrinsic map must have exactly one key", node.Line)
		}
		for key, val := range m {
			switch key {
			case "Ref":
				if val.Kind != yaml.ScalarNode {
					return fmt.Errorf("line %d: unsupported value for %q", val.Line, key)
				}
				*e = Expr{Kind: ExprRef, Target: val.Value}
			case "Fn::Sub":
				// The list form (template plus substitution map) is not
				// supported; only the string form is accepted.
				if val.Kind != yaml.ScalarNode {
					return fmt.Errorf("line %d: unsupported value for %q", val.Line, key)
				}
				*e = Expr{Kind: ExprSub, Tmpl: val.Value}
			case "Fn::GetAtt":
				if val.Kind == yaml.SequenceNode {
					var parts []string
					if err := val.Decode(&parts); err != nil {
						return err
					}
					*e = Expr{Kind: ExprGetAtt, Target: strings.Join(parts, ".")}
				} else {
					*e = Expr{Kind: ExprGetAtt, Target: val.Value}
				}
			default:
				return fmt.Errorf("line %d: unsupported intrinsic %q", node.Line, key)
			}
		}
		return nil
	}

	return fmt.Errorf("line %d: unsupported value kind", node.Line)
}

// MarshalJSON emits the long intrinsic form used in rendered template bodies.
func (e Expr) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case ExprRef:
		return []byte(fmt.Sprintf(`{"Ref":%q}`, e.Target)), nil
	case ExprSub:
		return []byte(fmt.Sprintf(`{"Fn::Sub":%q}`, e.Tmpl)), nil
	case ExprGetAtt:
		return []byte(fmt.Sprintf(`{"Fn::GetAtt":%q}`, e.Target)), nil
	default:
		return []byte(fmt.Sprintf("%q", e.Literal)), nil
	}
}

// Vars returns the names this expression refers to: the Ref target, the
// GetAtt resource, or every ${Name} inside a Sub template.
func (e Expr) Vars() []string {
	switch e.Kind {
	case ExprRef:
		return []string{e.Target}
	case ExprGetAtt:
		resource, _, _ := strings.Cut(e.Target, ".")
		return []string{resource}
	case ExprSub:
		var vars []string
		for _, m := range subVarRegex.FindAllStringSubmatch(e.Tmpl, -1) {
			// ${!Name} is an escaped literal, not a reference.
			if strings.HasPrefix(m[1], "!") {
				continue
			}
			vars = append(vars, m[1])
		}
		return vars
	}
	return nil
}

// Eval resolves the expression against the given scope. Refs resolve to the
// scope value for the target; Subs replace every ${Name}; GetAtt resolves to
// the scope value for the full target when present, otherwise to a
// placeholder in the CloudFormation ARN style. Unresolvable Refs and Sub
// variables are errors.
func (e Expr) Eval(scope map[string]string) (string, error) {
	switch e.Kind {
	case ExprEmpty:
		return "", nil
	case ExprLiteral:
		return e.Literal, nil
	case ExprRef:
		if v, ok := scope[e.Target]; ok {
			return v, nil
		}
		return "", fmt.Errorf("unresolved reference %q", e.Target)
	case ExprGetAtt:
		if v, ok := scope[e.Target]; ok {
			return v, nil
		}
		resource, _, _ := strings.Cut(e.Target, ".")
		return "<" + resource + ">", nil
	case ExprSub:
		var evalErr error
		result := subVarRegex.ReplaceAllStringFunc(e.Tmpl, func(match string) string {
			name := match[2 : len(match)-1]
			if strings.HasPrefix(name, "!") {
				return "${" + name[1:] + "}"
			}
			if v, ok := scope[name]; ok {
				return v
			}
			evalErr = fmt.Errorf("unresolved substitution variable %q", name)
			return match
		})
		return result, evalErr
	}
	return "", fmt.Errorf("unsupported expression kind %d", e.Kind)
}

// String renders the expression for logs and listings without evaluating it.
func (e Expr) String() string {
	switch e.Kind {
	case ExprRef:
		return "!Ref " + e.Target
	case ExprSub:
		return "!Sub " + e.Tmpl
	case ExprGetAtt:
		return "!GetAtt " + e.Target
	default:
		return e.Literal
	}
}
