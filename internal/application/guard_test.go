package application

import (
	"context"
	"errors"
	"io"
	"testing"

	"internApply/internal/errcode"
)

var pdfHeader = []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")

func pdfOfSize(n int) []byte {
	data := make([]byte, n)
	copy(data, pdfHeader)
	return data
}

func admit(g *Guard, f *Form, a *Attachment) error {
	return g.Record(f, a, g.Check(context.Background(), a))
}

func newTestGuard(scanner Scanner) *Guard {
	return NewGuard(1024, []string{".pdf", "doc", ".DOCX"}, true, scanner)
}

func TestGuardAcceptsAtOrUnderLimitAndClearsError(t *testing.T) {
	g := newTestGuard(nil)
	for _, size := range []int{len(pdfHeader), 512, 1024} {
		f := NewForm()
		f.AttachmentError = "previous failure"

		a := &Attachment{Name: "cv.pdf", Size: int64(size), Data: pdfOfSize(size)}
		if err := admit(g, f, a); err != nil {
			t.Fatalf("size %d: unexpected error %v", size, err)
		}
		if f.Resume != a {
			t.Fatalf("size %d: attachment not admitted", size)
		}
		if f.AttachmentError != "" {
			t.Fatalf("size %d: error not cleared: %q", size, f.AttachmentError)
		}
	}
}

func TestGuardRejectsOverLimitAndKeepsPrevious(t *testing.T) {
	g := newTestGuard(nil)
	f := NewForm()
	previous := &Attachment{Name: "old.pdf", Size: 10, Data: pdfOfSize(10)}
	if err := admit(g, f, previous); err != nil {
		t.Fatalf("seed: %v", err)
	}

	for _, size := range []int{1025, 4096} {
		err := admit(g, f, &Attachment{Name: "big.pdf", Size: int64(size), Data: pdfOfSize(size)})
		if errcode.Of(err) != errcode.OversizedAttachment {
			t.Fatalf("size %d: expected OversizedAttachment, got %v", size, err)
		}
		if f.Resume != previous {
			t.Fatalf("size %d: previous attachment replaced", size)
		}
		if f.AttachmentError == "" {
			t.Fatalf("size %d: error not reported", size)
		}
	}
}

func TestGuardOversizeMessageUsesMegabytes(t *testing.T) {
	g := NewGuard(5*1024*1024, []string{".pdf"}, false, nil)
	err := admit(g, NewForm(), &Attachment{Name: "cv.pdf", Size: 6 * 1024 * 1024})
	if got := errcode.MessageOf(err); got != "File size must be less than 5MB" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestGuardRejectsUnknownExtension(t *testing.T) {
	g := newTestGuard(nil)
	f := NewForm()
	err := admit(g, f, &Attachment{Name: "cv.exe", Size: 10, Data: pdfOfSize(10)})
	if errcode.Of(err) != errcode.UnsupportedAttachment {
		t.Fatalf("expected UnsupportedAttachment, got %v", err)
	}
	if f.Resume != nil {
		t.Fatalf("rejected file admitted")
	}
	if g.Accept() != ".pdf,.doc,.docx" {
		t.Fatalf("unexpected accept list %q", g.Accept())
	}
}

func TestGuardStrictContentCheck(t *testing.T) {
	g := newTestGuard(nil)
	f := NewForm()

	err := admit(g, f, &Attachment{Name: "cv.pdf", Size: 11, Data: []byte("hello world")})
	if errcode.Of(err) != errcode.UnsupportedAttachment {
		t.Fatalf("expected content mismatch, got %v", err)
	}

	a := &Attachment{Name: "cv.PDF", Size: int64(len(pdfHeader)), Data: pdfHeader}
	if err := admit(g, f, a); err != nil {
		t.Fatalf("real pdf rejected: %v", err)
	}
	if a.ContentType != "application/pdf" {
		t.Fatalf("content type not filled from sniffing: %q", a.ContentType)
	}

	lenient := NewGuard(1024, []string{".pdf"}, false, nil)
	if err := admit(lenient, f, &Attachment{Name: "cv.pdf", Size: 5, Data: []byte("hello")}); err != nil {
		t.Fatalf("lenient guard should skip sniffing: %v", err)
	}
}

type stubScanner struct {
	err   error
	calls int
}

func (s *stubScanner) Scan(_ context.Context, r io.Reader) error {
	s.calls++
	_, _ = io.ReadAll(r)
	return s.err
}

func TestGuardScanner(t *testing.T) {
	infected := &stubScanner{err: errcode.New(errcode.InfectedAttachment, "malicious file detected")}
	g := newTestGuard(infected)
	f := NewForm()
	err := admit(g, f, &Attachment{Name: "cv.pdf", Size: 10, Data: pdfOfSize(10)})
	if errcode.Of(err) != errcode.InfectedAttachment {
		t.Fatalf("expected InfectedAttachment, got %v", err)
	}
	if infected.calls != 1 {
		t.Fatalf("scanner called %d times", infected.calls)
	}

	broken := &stubScanner{err: errors.New("connection refused")}
	g = newTestGuard(broken)
	err = admit(g, f, &Attachment{Name: "cv.pdf", Size: 10, Data: pdfOfSize(10)})
	if errcode.Of(err) != errcode.SystemError {
		t.Fatalf("expected SystemError, got %v", err)
	}

	oversized := &stubScanner{}
	g = newTestGuard(oversized)
	_ = admit(g, f, &Attachment{Name: "cv.pdf", Size: 4096, Data: pdfOfSize(4096)})
	if oversized.calls != 0 {
		t.Fatalf("oversized files must not reach the scanner")
	}
}
