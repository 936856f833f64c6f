package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "mount point",
			code:    CodeMountMissing,
			wantMsg: "Mount point not found",
			wantCat: CategoryStartup,
		},
		{
			name:    "catalog load",
			code:    CodeCatalogLoad,
			wantMsg: "Translation catalogs could not be loaded",
			wantCat: CategoryI18n,
		},
		{
			name:    "config",
			code:    CodeConfigInvalid,
			wantMsg: "Invalid configuration",
			wantCat: CategoryConfig,
		},
		{
			name:    "live frame",
			code:    CodeFrameInvalid,
			wantMsg: "Invalid live frame",
			wantCat: CategoryLive,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryLive, "session %q closed", "abc")
	if err.Message != `session "abc" closed` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Code != "" {
		t.Errorf("Code = %q, want empty", err.Code)
	}
	if err.Error() != `session "abc" closed` {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestErrorString(t *testing.T) {
	err := New(CodeMountMissing).WithDetail("ignored in Error()")
	if got := err.Error(); got != "E100: Mount point not found" {
		t.Errorf("Error() = %q", got)
	}

	wrapped := New(CodeShellUnreadable).Wrap(fmt.Errorf("open index.html: no such file"))
	if got := wrapped.Error(); got != "E101: HTML shell unreadable: open index.html: no such file" {
		t.Errorf("Error() = %q", got)
	}
}

func TestIsAndAs(t *testing.T) {
	cause := stderrors.New("disk on fire")
	err := fmt.Errorf("startup: %w", New(CodeCatalogLoad).Wrap(cause))

	if !stderrors.Is(err, New(CodeCatalogLoad)) {
		t.Error("expected errors.Is to match on code")
	}
	if stderrors.Is(err, New(CodeBaseLocale)) {
		t.Error("expected different codes not to match")
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected the wrapped cause to be reachable")
	}
	if !HasCode(err, CodeCatalogLoad) {
		t.Error("expected HasCode to find E200")
	}

	var e *Error
	if !stderrors.As(err, &e) {
		t.Fatal("expected errors.As to find *Error")
	}
	if e.Code != CodeCatalogLoad {
		t.Errorf("Code = %q", e.Code)
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, CodeConfigInvalid) != nil {
		t.Error("expected nil for nil error")
	}

	plain := stderrors.New("bad port")
	e := FromError(plain, CodeConfigInvalid)
	if e.Code != CodeConfigInvalid || e.Wrapped != plain {
		t.Errorf("unexpected wrap: %+v", e)
	}

	existing := New(CodeMountMissing)
	if got := FromError(fmt.Errorf("ctx: %w", existing), CodeConfigInvalid); got != existing {
		t.Error("expected the existing *Error to be returned")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New(CodeMountMissing).
		WithDetail(`no element with id="root"`).
		WithSuggestion(`Add <div id="root"></div>`)
	out := err.Format()

	for _, want := range []string{
		"ERROR E100: Mount point not found",
		`no element with id="root"`,
		`Hint: Add <div id="root"></div>`,
		"Learn more: https://github.com/vango-dev/starter#e100",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New(CodeSessionNotFound).WithDetail("id abc")
	if got := err.FormatCompact(); got != "E400: Session not found (id abc)" {
		t.Errorf("FormatCompact() = %q", got)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New(CodeFrameInvalid).Wrap(stderrors.New("unexpected EOF"))

	var decoded map[string]any
	if jerr := json.Unmarshal([]byte(err.FormatJSON()), &decoded); jerr != nil {
		t.Fatalf("invalid JSON: %v", jerr)
	}
	if decoded["code"] != "E401" {
		t.Errorf("code = %v", decoded["code"])
	}
	if decoded["category"] != "live" {
		t.Errorf("category = %v", decoded["category"])
	}
	if decoded["cause"] != "unexpected EOF" {
		t.Errorf("cause = %v", decoded["cause"])
	}
}

func TestPrintError(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	PrintError(&buf, New(CodeConfigInvalid))
	if !strings.Contains(buf.String(), "ERROR E300") {
		t.Errorf("PrintError() = %q", buf.String())
	}

	buf.Reset()
	PrintError(&buf, stderrors.New("plain"))
	if !strings.Contains(buf.String(), "ERROR: plain") {
		t.Errorf("PrintError() = %q", buf.String())
	}
}

func TestRegistryCodes(t *testing.T) {
	want := []string{"E100", "E101", "E200", "E201", "E202", "E300", "E400", "E401"}
	for _, code := range want {
		if _, ok := GetTemplate(code); !ok {
			t.Errorf("code %s not registered", code)
		}
	}
	if got := len(GetAllCodes()); got != len(want) {
		t.Errorf("expected %d codes, got %d", len(want), got)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line too long: %q", l)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("expected nil for empty text")
	}
}
