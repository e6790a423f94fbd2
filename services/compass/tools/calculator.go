// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tools

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// unary functions accepted by the calculator, e.g. "sqrt(16)".
var calcFunctions = map[string]func(float64) (float64, error){
	"sqrt": func(x float64) (float64, error) {
		if x < 0 {
			return 0, fmt.Errorf("cannot calculate square root of negative number")
		}
		return math.Sqrt(x), nil
	},
	"sin":   func(x float64) (float64, error) { return math.Sin(x), nil },
	"cos":   func(x float64) (float64, error) { return math.Cos(x), nil },
	"tan":   func(x float64) (float64, error) { return math.Tan(x), nil },
	"log":   func(x float64) (float64, error) { return math.Log(x), nil },
	"log10": func(x float64) (float64, error) { return math.Log10(x), nil },
	"exp":   func(x float64) (float64, error) { return math.Exp(x), nil },
	"floor": func(x float64) (float64, error) { return math.Floor(x), nil },
	"ceil":  func(x float64) (float64, error) { return math.Ceil(x), nil },
	"abs":   func(x float64) (float64, error) { return math.Abs(x), nil },
}

// Calculate evaluates a simple arithmetic expression without eval-style
// code execution. Supported forms, tried in order:
//
//   - a binary operation "left OP right" for OP in + - * / ^
//   - a unary function call "fn(x)" for the functions in calcFunctions
//   - a bare number
//
// The split on the first operator mirrors the deliberately simple
// grammar the model is prompted to emit; this is a reasoning test tool,
// not a general expression engine.
func Calculate(expression string) (float64, error) {
	expr := strings.TrimSpace(expression)
	if expr == "" {
		return 0, fmt.Errorf("empty expression")
	}

	for _, op := range []string{"+", "-", "*", "/", "^"} {
		// Skip a leading sign so "-4 * 2" splits on "*", not "-".
		idx := strings.Index(expr[1:], op)
		if idx < 0 {
			continue
		}
		idx++
		left, leftErr := strconv.ParseFloat(strings.TrimSpace(expr[:idx]), 64)
		right, rightErr := strconv.ParseFloat(strings.TrimSpace(expr[idx+1:]), 64)
		if leftErr != nil || rightErr != nil {
			continue
		}
		return applyBinary(op, left, right)
	}

	for name, fn := range calcFunctions {
		if strings.HasPrefix(expr, name+"(") && strings.HasSuffix(expr, ")") {
			arg, err := strconv.ParseFloat(strings.TrimSpace(expr[len(name)+1:len(expr)-1]), 64)
			if err != nil {
				return 0, fmt.Errorf("invalid argument in %q: %w", expr, err)
			}
			return fn(arg)
		}
	}

	value, err := strconv.ParseFloat(expr, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot evaluate expression %q", expression)
	}
	return value, nil
}

func applyBinary(op string, left, right float64) (float64, error) {
	switch op {
	case "+":
		return left + right, nil
	case "-":
		return left - right, nil
	case "*":
		return left * right, nil
	case "/":
		if right == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return left / right, nil
	case "^":
		return math.Pow(left, right), nil
	default:
		return 0, fmt.Errorf("unknown operator %q", op)
	}
}

// RegisterCalculator adds the calculator toolset to a registry. It is
// used by the demo reasoning endpoint and by the reasoner tests.
func RegisterCalculator(r *Registry) {
	r.Register(Spec{
		Name:        "calculate",
		Description: "Evaluate a simple mathematical expression such as \"2+2\" or \"sqrt(16)\".",
		Params: []Param{
			{Name: "expression", Required: true, Description: "The expression to evaluate"},
		},
	}, func(_ context.Context, input map[string]any) (any, error) {
		expr, ok := input["expression"].(string)
		if !ok {
			return nil, fmt.Errorf("expression must be a string")
		}
		return Calculate(expr)
	})

	r.Register(Spec{
		Name:        "convert_units",
		Description: "Convert a salary amount between hourly, monthly and annual rates assuming a 40-hour week.",
		Params: []Param{
			{Name: "amount", Required: true, Description: "The numeric amount to convert"},
			{Name: "from", Required: true, Description: "Source rate: hourly, monthly or annual"},
			{Name: "to", Required: false, Description: "Target rate, defaults to annual"},
		},
	}, func(_ context.Context, input map[string]any) (any, error) {
		amount, err := toFloat(input["amount"])
		if err != nil {
			return nil, err
		}
		from, _ := input["from"].(string)
		to, _ := input["to"].(string)
		if to == "" {
			to = "annual"
		}
		annual, err := toAnnual(amount, from)
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(to) {
		case "annual":
			return annual, nil
		case "monthly":
			return annual / 12, nil
		case "hourly":
			return annual / (40 * 52), nil
		default:
			return nil, fmt.Errorf("unknown target rate %q", to)
		}
	})
}

func toAnnual(amount float64, from string) (float64, error) {
	switch strings.ToLower(from) {
	case "hourly":
		return amount * 40 * 52, nil
	case "monthly":
		return amount * 12, nil
	case "annual", "yearly":
		return amount, nil
	default:
		return 0, fmt.Errorf("unknown source rate %q", from)
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}
