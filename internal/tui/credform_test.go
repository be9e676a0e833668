package tui

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"unsafe"

	"github.com/rivo/tview"
)

func pressFormButton(b *tview.Button) {
	field := reflect.ValueOf(b).Elem().FieldByName("selected")
	ptr := unsafe.Pointer(field.UnsafeAddr())
	(*(*func())(ptr))()
}

func stubCredFormRunner(t *testing.T, drive func(form *tview.Form)) {
	t.Helper()
	original := credFormRunner
	t.Cleanup(func() { credFormRunner = original })
	credFormRunner = func(_ *App, _, focus tview.Primitive) error {
		drive(focus.(*tview.Form))
		return nil
	}
}

func TestPromptCredentialSubmit(t *testing.T) {
	stubCredFormRunner(t, func(form *tview.Form) {
		form.GetFormItem(0).(*tview.InputField).SetText("alice")
		form.GetFormItem(1).(*tview.InputField).SetText("s3cret")
		pressFormButton(form.GetButton(0))
	})

	cred, err := PromptCredential(context.Background(), "srv01")
	if err != nil {
		t.Fatalf("PromptCredential error: %v", err)
	}
	if cred.Username != "alice" || cred.Secret != "s3cret" {
		t.Fatalf("credential = %+v, want alice/s3cret", cred)
	}
}

func TestPromptCredentialTrimsUsername(t *testing.T) {
	stubCredFormRunner(t, func(form *tview.Form) {
		form.GetFormItem(0).(*tview.InputField).SetText("  alice  ")
		form.GetFormItem(1).(*tview.InputField).SetText("s3cret")
		pressFormButton(form.GetButton(0))
	})

	cred, err := PromptCredential(context.Background(), "srv01")
	if err != nil {
		t.Fatalf("PromptCredential error: %v", err)
	}
	if cred.Username != "alice" {
		t.Fatalf("username = %q, want trimmed", cred.Username)
	}
}

func TestPromptCredentialCancel(t *testing.T) {
	stubCredFormRunner(t, func(form *tview.Form) {
		pressFormButton(form.GetButton(1))
	})

	if _, err := PromptCredential(context.Background(), "srv01"); !errors.Is(err, ErrPromptCancelled) {
		t.Fatalf("error = %v, want ErrPromptCancelled", err)
	}
}

func TestPromptCredentialEmptyUsernameDoesNotSubmit(t *testing.T) {
	stubCredFormRunner(t, func(form *tview.Form) {
		form.GetFormItem(1).(*tview.InputField).SetText("s3cret")
		pressFormButton(form.GetButton(0)) // rejected, form stays up
		pressFormButton(form.GetButton(1))
	})

	if _, err := PromptCredential(context.Background(), "srv01"); !errors.Is(err, ErrPromptCancelled) {
		t.Fatalf("error = %v, want ErrPromptCancelled after cancel", err)
	}
}

func TestPromptCredentialAbortedContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	t.Cleanup(func() { SetAbortContext(nil) })

	stubCredFormRunner(t, func(form *tview.Form) {
		form.GetFormItem(0).(*tview.InputField).SetText("alice")
		pressFormButton(form.GetButton(0))
	})

	if _, err := PromptCredential(ctx, "srv01"); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}
