// Package filter provides AIP-160 filter expression parsing and SQL
// translation for the pageable list entities.
package filter

import (
	"fmt"
	"strings"

	"github.com/louisbranch/demonlist.space/internal/platform/errors"
	"github.com/louisbranch/demonlist.space/internal/services/list/storage"
	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// playerColumns maps player filter fields to SQL column names.
var playerColumns = map[string]string{
	"name":   "players.name",
	"banned": "players.banned",
}

// demonColumns maps demon filter fields to SQL column names. Verifier
// and publisher filter by player ID so the probes stay join-free.
var demonColumns = map[string]string{
	"name":        "demons.name",
	"position":    "demons.position",
	"requirement": "demons.requirement",
	"verifier":    "demons.verifier",
	"publisher":   "demons.publisher",
}

// recordColumns maps record filter fields to SQL column names.
var recordColumns = map[string]string{
	"progress": "records.progress",
	"status":   "records.status",
	"player":   "records.player",
	"demon":    "records.demon",
	"video":    "records.video",
}

func playerDeclarations() (*filtering.Declarations, error) {
	return filtering.NewDeclarations(
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent("name", filtering.TypeString),
		filtering.DeclareIdent("banned", filtering.TypeBool),
	)
}

func demonDeclarations() (*filtering.Declarations, error) {
	return filtering.NewDeclarations(
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent("name", filtering.TypeString),
		filtering.DeclareIdent("position", filtering.TypeInt),
		filtering.DeclareIdent("requirement", filtering.TypeInt),
		filtering.DeclareIdent("verifier", filtering.TypeInt),
		filtering.DeclareIdent("publisher", filtering.TypeInt),
	)
}

func recordDeclarations() (*filtering.Declarations, error) {
	return filtering.NewDeclarations(
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent("progress", filtering.TypeInt),
		filtering.DeclareIdent("status", filtering.TypeString),
		filtering.DeclareIdent("player", filtering.TypeInt),
		filtering.DeclareIdent("demon", filtering.TypeString),
		filtering.DeclareIdent("video", filtering.TypeString),
	)
}

// Players translates a player filter expression to a SQL condition.
func Players(expression string) (storage.Condition, error) {
	return parse(expression, playerDeclarations, playerColumns)
}

// Demons translates a demon filter expression to a SQL condition.
func Demons(expression string) (storage.Condition, error) {
	return parse(expression, demonDeclarations, demonColumns)
}

// Records translates a record filter expression to a SQL condition.
func Records(expression string) (storage.Condition, error) {
	return parse(expression, recordDeclarations, recordColumns)
}

// parse parses an AIP-160 expression and returns a SQL condition. An
// empty expression yields an empty condition.
func parse(expression string, declare func() (*filtering.Declarations, error), columns map[string]string) (storage.Condition, error) {
	if strings.TrimSpace(expression) == "" {
		return storage.Condition{}, nil
	}

	decls, err := declare()
	if err != nil {
		return storage.Condition{}, fmt.Errorf("create declarations: %w", err)
	}

	parsed, err := filtering.ParseFilterString(expression, decls)
	if err != nil {
		return storage.Condition{}, errors.Wrap(errors.CodeInvalidFilter, "filter expression rejected", err)
	}

	cond, err := translateExpr(parsed.CheckedExpr.Expr, columns)
	if err != nil {
		return storage.Condition{}, errors.Wrap(errors.CodeInvalidFilter, "filter expression rejected", err)
	}
	return cond, nil
}

func translateExpr(e *expr.Expr, columns map[string]string) (storage.Condition, error) {
	if e == nil {
		return storage.Condition{}, nil
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_CallExpr:
		return translateCall(kind.CallExpr, columns)
	default:
		return storage.Condition{}, fmt.Errorf("unsupported expression type: %T", kind)
	}
}

func translateCall(call *expr.Expr_Call, columns map[string]string) (storage.Condition, error) {
	switch call.Function {
	case "_&&_", "AND":
		return translateLogical(call.Args, "AND", columns)
	case "_||_", "OR":
		return translateLogical(call.Args, "OR", columns)
	case "_==_", "=":
		return translateComparison(call.Args, "=", columns)
	case "_!=_", "!=":
		return translateComparison(call.Args, "!=", columns)
	case "_<_", "<":
		return translateComparison(call.Args, "<", columns)
	case "_<=_", "<=":
		return translateComparison(call.Args, "<=", columns)
	case "_>_", ">":
		return translateComparison(call.Args, ">", columns)
	case "_>=_", ">=":
		return translateComparison(call.Args, ">=", columns)
	default:
		return storage.Condition{}, fmt.Errorf("unsupported function: %s", call.Function)
	}
}

func translateLogical(args []*expr.Expr, op string, columns map[string]string) (storage.Condition, error) {
	if len(args) != 2 {
		return storage.Condition{}, fmt.Errorf("%s requires 2 arguments", op)
	}

	left, err := translateExpr(args[0], columns)
	if err != nil {
		return storage.Condition{}, err
	}
	right, err := translateExpr(args[1], columns)
	if err != nil {
		return storage.Condition{}, err
	}

	return storage.Condition{
		SQL:  fmt.Sprintf("(%s %s %s)", left.SQL, op, right.SQL),
		Args: append(left.Args, right.Args...),
	}, nil
}

func translateComparison(args []*expr.Expr, op string, columns map[string]string) (storage.Condition, error) {
	if len(args) != 2 {
		return storage.Condition{}, fmt.Errorf("comparison requires 2 arguments")
	}

	field, err := extractFieldName(args[0])
	if err != nil {
		return storage.Condition{}, err
	}
	column, ok := columns[field]
	if !ok {
		return storage.Condition{}, fmt.Errorf("unknown field: %s", field)
	}

	value, err := extractValue(args[1])
	if err != nil {
		return storage.Condition{}, err
	}

	return storage.Condition{
		SQL:  fmt.Sprintf("%s %s ?", column, op),
		Args: []any{value},
	}, nil
}

func extractFieldName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_IdentExpr:
		return kind.IdentExpr.Name, nil
	default:
		return "", fmt.Errorf("expected identifier, got %T", kind)
	}
}

func extractValue(e *expr.Expr) (any, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_ConstExpr:
		return extractConstValue(kind.ConstExpr)
	default:
		return nil, fmt.Errorf("expected constant, got %T", kind)
	}
}

func extractConstValue(c *expr.Constant) (any, error) {
	if c == nil {
		return nil, fmt.Errorf("nil constant")
	}

	switch kind := c.ConstantKind.(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	case *expr.Constant_Int64Value:
		return kind.Int64Value, nil
	case *expr.Constant_Uint64Value:
		return kind.Uint64Value, nil
	case *expr.Constant_DoubleValue:
		return kind.DoubleValue, nil
	case *expr.Constant_BoolValue:
		return kind.BoolValue, nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", kind)
	}
}
