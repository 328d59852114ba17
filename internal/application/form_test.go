package application

import (
	"testing"

	"internApply/internal/errcode"
)

func TestNewFormStartsWithDefaultRole(t *testing.T) {
	f := NewForm()
	if f.Role != RoleMarketResearch {
		t.Fatalf("unexpected default role %q", f.Role)
	}
	if f.Resume != nil || f.FullName != "" {
		t.Fatalf("new form should be empty: %+v", f)
	}
}

func TestSetFieldRejectsUnknownNames(t *testing.T) {
	f := NewForm()
	if err := f.SetField("salary", "lots"); errcode.Of(err) != errcode.UnknownField {
		t.Fatalf("expected UnknownField, got %v", err)
	}
	if err := f.SetField(FieldEmail, "jane@example.com"); err != nil {
		t.Fatalf("set email: %v", err)
	}
	if f.Email != "jane@example.com" {
		t.Fatalf("unexpected email %q", f.Email)
	}
}

func TestCommitFieldNormalizesLinksOnly(t *testing.T) {
	f := NewForm()
	if err := f.CommitField(FieldPortfolio, "github.com/jane"); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if f.Portfolio != "https://github.com/jane" {
		t.Fatalf("portfolio not normalized: %q", f.Portfolio)
	}
	if err := f.CommitField(FieldFullName, "foo.com"); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if f.FullName != "foo.com" {
		t.Fatalf("non-link field must be stored as typed, got %q", f.FullName)
	}
}

func TestSetRoleIsMutuallyExclusive(t *testing.T) {
	f := NewForm()
	if err := f.SetRole(RoleFrontend); err != nil {
		t.Fatalf("set role: %v", err)
	}
	if err := f.SetRole(RoleUIUX); err != nil {
		t.Fatalf("set role: %v", err)
	}
	if f.Role != RoleUIUX {
		t.Fatalf("unexpected role %q", f.Role)
	}
	if err := f.SetRole("Backend"); errcode.Of(err) != errcode.InvalidRole {
		t.Fatalf("expected InvalidRole, got %v", err)
	}
	if f.Role != RoleUIUX {
		t.Fatalf("invalid role must not change selection")
	}
}

func TestSnapshotIsDetachedFromForm(t *testing.T) {
	f := NewForm()
	_ = f.SetField(FieldFullName, "Jane")
	f.SetAttachment(&Attachment{Name: "cv.pdf", Size: 3, Data: []byte("abc")})

	snap := f.Snapshot()
	_ = f.SetField(FieldFullName, "John")
	f.Resume.Data[0] = 'x'

	if snap.FullName != "Jane" {
		t.Fatalf("snapshot followed form edits: %q", snap.FullName)
	}
	if string(snap.Resume.Data) != "abc" {
		t.Fatalf("snapshot shares attachment bytes: %q", snap.Resume.Data)
	}
}

func TestResetClearsEverything(t *testing.T) {
	f := NewForm()
	_ = f.SetField(FieldPhone, "123")
	_ = f.SetRole(RoleFrontend)
	f.SetAttachment(&Attachment{Name: "cv.pdf"})
	f.AttachmentError = "old"

	f.Reset()
	if *f != *NewForm() {
		t.Fatalf("reset left data behind: %+v", f)
	}
}

func TestAttachmentExtension(t *testing.T) {
	cases := map[string]string{
		"cv.pdf":         "pdf",
		"my.resume.DOCX": "DOCX",
		"noext":          "noext",
	}
	for name, want := range cases {
		a := &Attachment{Name: name}
		if got := a.Extension(); got != want {
			t.Errorf("Extension(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestParseRole(t *testing.T) {
	for _, r := range Roles() {
		if _, err := ParseRole(string(r)); err != nil {
			t.Fatalf("parse %q: %v", r, err)
		}
	}
	if len(Roles()) != 3 {
		t.Fatalf("expected exactly three roles")
	}
	if _, err := ParseRole("market research"); err == nil {
		t.Fatalf("role labels are case sensitive")
	}
}
