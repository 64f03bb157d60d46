/*
 *  Copyright (c) 2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package calc

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	CodeOK = iota
	CodeDivideByZero
	CodeUnknownOperator
)

type (
	Request struct {
		X  int
		Y  int
		Op byte
	}

	Response struct {
		Result int
		Code   int
	}
)

// Serialize renders "x op y".
func (r Request) Serialize() []byte {
	return []byte(strconv.Itoa(r.X) + " " + string(r.Op) + " " + strconv.Itoa(r.Y))
}

func (r *Request) Deserialize(b []byte) error {
	parts := strings.Fields(string(b))
	if len(parts) != 3 || len(parts[1]) != 1 {
		return fmt.Errorf("calc: invalid request %q", b)
	}
	x, err := strconv.Atoi(parts[0])
	if err != nil {
		return fmt.Errorf("calc: invalid x: %w", err)
	}
	y, err := strconv.Atoi(parts[2])
	if err != nil {
		return fmt.Errorf("calc: invalid y: %w", err)
	}
	r.X, r.Op, r.Y = x, parts[1][0], y
	return nil
}

// Serialize renders "result code".
func (r Response) Serialize() []byte {
	return []byte(strconv.Itoa(r.Result) + " " + strconv.Itoa(r.Code))
}

func (r *Response) Deserialize(b []byte) error {
	parts := strings.Fields(string(b))
	if len(parts) != 2 {
		return fmt.Errorf("calc: invalid response %q", b)
	}
	res, err := strconv.Atoi(parts[0])
	if err != nil {
		return fmt.Errorf("calc: invalid result: %w", err)
	}
	code, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("calc: invalid code: %w", err)
	}
	r.Result, r.Code = res, code
	return nil
}

func Calculate(req Request) Response {
	switch req.Op {
	case '+':
		return Response{Result: req.X + req.Y}
	case '-':
		return Response{Result: req.X - req.Y}
	case '*':
		return Response{Result: req.X * req.Y}
	case '/':
		if req.Y == 0 {
			return Response{Code: CodeDivideByZero}
		}
		return Response{Result: req.X / req.Y}
	case '%':
		if req.Y == 0 {
			return Response{Code: CodeDivideByZero}
		}
		return Response{Result: req.X % req.Y}
	default:
		return Response{Code: CodeUnknownOperator}
	}
}

// Handle answers every complete request frame in `in` and leaves a trailing
// partial frame for the next call. Requests that do not parse are skipped.
func Handle(in *bytes.Buffer, w io.Writer) error {
	for {
		content, ok := Decode(in)
		if !ok {
			return nil
		}
		var req Request
		if err := req.Deserialize(content); err != nil {
			continue
		}
		if _, err := w.Write(Encode(Calculate(req).Serialize())); err != nil {
			return err
		}
	}
}
