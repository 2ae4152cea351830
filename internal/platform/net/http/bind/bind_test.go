package bind

import (
	"net/http/httptest"
	"strings"
	"testing"

	perr "circlesync/internal/platform/errors"
)

type payload struct {
	Mode  string `json:"mode" validate:"required,oneof=full incremental auto"`
	Limit int    `json:"limit" validate:"omitempty,min=1,max=1000"`
}

func TestParseJSON(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		opts      []JSONOptions
		wantCode  perr.ErrorCode
		wantField string
		ok        bool
	}{
		{name: "valid", body: `{"mode":"auto","limit":5}`, ok: true},
		{name: "empty rejected", body: ``, wantCode: perr.ErrorCodeJSON},
		{name: "empty allowed fails required", body: ``, opts: []JSONOptions{{AllowEmptyBody: true}}, wantCode: perr.ErrorCodeValidation, wantField: "mode"},
		{name: "bad enum", body: `{"mode":"weekly"}`, wantCode: perr.ErrorCodeValidation, wantField: "mode"},
		{name: "over max", body: `{"mode":"full","limit":5000}`, wantCode: perr.ErrorCodeValidation, wantField: "limit"},
		{name: "unknown field", body: `{"mode":"full","extra":1}`, wantCode: perr.ErrorCodeJSON},
		{name: "unknown allowed", body: `{"mode":"full","extra":1}`, opts: []JSONOptions{{}}, ok: true},
		{name: "trailing", body: `{"mode":"full"}{"mode":"full"}`, wantCode: perr.ErrorCodeJSON},
		{name: "too large", body: `{"mode":"full"}`, opts: []JSONOptions{{MaxBytes: 5}}, wantCode: perr.ErrorCodeJSON},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", strings.NewReader(c.body))
			got, err := ParseJSON[payload](req, c.opts...)
			if c.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got.Mode == "" {
					t.Fatalf("payload not decoded")
				}
				return
			}
			if !perr.IsCode(err, c.wantCode) {
				t.Fatalf("code = %v, want %v (err=%v)", perr.CodeOf(err), c.wantCode, err)
			}
			if c.wantField != "" {
				pe, _ := perr.As(err)
				if pe.Field() != c.wantField {
					t.Fatalf("field = %q, want %q", pe.Field(), c.wantField)
				}
			}
		})
	}
}

func TestParseJSON_ShortMessages(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"mode":"full","limit":0}`))
	if _, err := ParseJSON[payload](req); err != nil {
		t.Fatalf("omitempty should skip zero limit: %v", err)
	}

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{"mode":"full","limit":2000}`))
	_, err := ParseJSON[payload](req)
	if err == nil || !strings.Contains(err.Error(), "limit must be at most 1000") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestVar(t *testing.T) {
	if err := Var("address", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", "eth_addr"); err != nil {
		t.Fatalf("valid address rejected: %v", err)
	}
	err := Var("address", "0x123", "eth_addr")
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("code = %v", perr.CodeOf(err))
	}
	pe, _ := perr.As(err)
	if pe.Field() != "address" || !strings.HasPrefix(err.Error(), "address must be") {
		t.Fatalf("unexpected error: field=%q msg=%q", pe.Field(), err.Error())
	}
	if err := Var("verified", "maybe", "omitempty,boolean"); err == nil {
		t.Fatalf("expected boolean failure")
	}
	if err := Var("verified", "", "omitempty,boolean"); err != nil {
		t.Fatalf("empty should pass omitempty: %v", err)
	}
}
