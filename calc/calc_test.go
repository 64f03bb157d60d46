/*
 *  Copyright (c) 2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package calc_test

import (
	"bytes"
	"fmt"
	"testing"

	"go.osspkg.com/casecheck"

	"go.osspkg.com/reactor/calc"
)

func TestUnit_Encode(t *testing.T) {
	casecheck.Equal(t, "5\n1 + 2\n", string(calc.Encode([]byte("1 + 2"))))
	casecheck.Equal(t, "0\n\n", string(calc.Encode(nil)))
}

func TestUnit_Decode(t *testing.T) {
	buf := bytes.NewBufferString("5\n1 + 2\n3\n4 ")

	content, ok := calc.Decode(buf)
	casecheck.True(t, ok)
	casecheck.Equal(t, "1 + 2", string(content))

	// partial frame stays buffered
	_, ok = calc.Decode(buf)
	casecheck.False(t, ok)
	casecheck.Equal(t, "3\n4 ", buf.String())

	buf.WriteString("\nx")
	_, ok = calc.Decode(buf)
	casecheck.False(t, ok)
	casecheck.Equal(t, 0, buf.Len())
}

func TestUnit_DecodeMaxFrame(t *testing.T) {
	body := bytes.Repeat([]byte("1"), calc.MaxFrameSize)
	buf := bytes.NewBuffer(calc.Encode(body))

	content, ok := calc.Decode(buf)
	casecheck.True(t, ok)
	casecheck.Equal(t, calc.MaxFrameSize, len(content))
	casecheck.Equal(t, 0, buf.Len())
}

func TestUnit_DecodeMalformed(t *testing.T) {
	tests := []string{
		"x\n1 + 2\n",
		"-1\nabc\n",
		"3\nabcd\n",
		"9223372036854775807\nabc\n",
		"65537\nabc\n",
		"1234567",
	}
	for i, in := range tests {
		t.Run(fmt.Sprintf("Case%d", i), func(t *testing.T) {
			buf := bytes.NewBufferString(in)
			_, ok := calc.Decode(buf)
			casecheck.False(t, ok)
			casecheck.Equal(t, 0, buf.Len())
		})
	}

	buf := bytes.NewBufferString("12")
	_, ok := calc.Decode(buf)
	casecheck.False(t, ok)
	casecheck.Equal(t, "12", buf.String())
}

func TestUnit_Calculate(t *testing.T) {
	tests := []struct {
		req  calc.Request
		want calc.Response
	}{
		{req: calc.Request{X: 1, Y: 2, Op: '+'}, want: calc.Response{Result: 3}},
		{req: calc.Request{X: 1, Y: 2, Op: '-'}, want: calc.Response{Result: -1}},
		{req: calc.Request{X: 6, Y: 7, Op: '*'}, want: calc.Response{Result: 42}},
		{req: calc.Request{X: 7, Y: 2, Op: '/'}, want: calc.Response{Result: 3}},
		{req: calc.Request{X: 7, Y: 0, Op: '/'}, want: calc.Response{Code: calc.CodeDivideByZero}},
		{req: calc.Request{X: 7, Y: 4, Op: '%'}, want: calc.Response{Result: 3}},
		{req: calc.Request{X: 7, Y: 0, Op: '%'}, want: calc.Response{Code: calc.CodeDivideByZero}},
		{req: calc.Request{X: 7, Y: 4, Op: '^'}, want: calc.Response{Code: calc.CodeUnknownOperator}},
	}
	for _, tt := range tests {
		t.Run(string(tt.req.Serialize()), func(t *testing.T) {
			casecheck.Equal(t, tt.want, calc.Calculate(tt.req))
		})
	}
}

func TestUnit_RequestResponseText(t *testing.T) {
	var req calc.Request
	casecheck.NoError(t, req.Deserialize([]byte("-3 * 12")))
	casecheck.Equal(t, calc.Request{X: -3, Y: 12, Op: '*'}, req)
	casecheck.Equal(t, "-3 * 12", string(req.Serialize()))

	casecheck.Error(t, req.Deserialize([]byte("1 +")))
	casecheck.Error(t, req.Deserialize([]byte("a + 1")))
	casecheck.Error(t, req.Deserialize([]byte("1 ++ 1")))

	var resp calc.Response
	casecheck.NoError(t, resp.Deserialize([]byte("-36 0")))
	casecheck.Equal(t, calc.Response{Result: -36}, resp)
	casecheck.Equal(t, "0 1", string(calc.Response{Code: 1}.Serialize()))
	casecheck.Error(t, resp.Deserialize([]byte("36")))
}

func TestUnit_Handle(t *testing.T) {
	in := bytes.NewBuffer(nil)
	in.Write(calc.Encode([]byte("1 + 2")))
	in.Write(calc.Encode([]byte("bogus")))
	in.Write(calc.Encode([]byte("8 / 0")))
	in.WriteString("5\n2 *")

	out := bytes.NewBuffer(nil)
	casecheck.NoError(t, calc.Handle(in, out))
	casecheck.Equal(t, "3\n3 0\n3\n0 1\n", out.String())
	casecheck.Equal(t, "5\n2 *", in.String())

	in.WriteString(" 2\n")
	out.Reset()
	casecheck.NoError(t, calc.Handle(in, out))
	casecheck.Equal(t, "3\n4 0\n", out.String())
	casecheck.Equal(t, 0, in.Len())
}
