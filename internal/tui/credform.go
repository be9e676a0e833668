package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/drivesave/drivesave/internal/credstore"
)

// ErrPromptCancelled is returned when the user dismisses the credential form.
var ErrPromptCancelled = errors.New("credential prompt cancelled by user")

var credFormRunner = func(app *App, root, focus tview.Primitive) error {
	return app.SetRoot(root, true).SetFocus(focus).Run()
}

// PromptCredential shows a credential form for host and blocks until the user
// submits or cancels. The secret never touches the terminal scrollback; the
// password field renders mask characters only.
func PromptCredential(ctx context.Context, host string) (credstore.Credential, error) {
	SetAbortContext(ctx)
	app := NewApp()

	var cred credstore.Credential
	cancelled := true

	form := tview.NewForm().
		SetButtonsAlign(tview.AlignCenter).
		SetButtonBackgroundColor(DriveBlue).
		SetButtonTextColor(tcell.ColorWhite).
		SetLabelColor(DriveLight).
		SetFieldBackgroundColor(DriveDark).
		SetFieldTextColor(tcell.ColorWhite)

	form.AddInputField("Username", "", 40, nil, nil)
	form.AddPasswordField("Password", "", 40, '*', nil)
	form.AddButton("Connect", func() {
		username := strings.TrimSpace(form.GetFormItem(0).(*tview.InputField).GetText())
		if username == "" {
			return
		}
		cred = credstore.Credential{
			Username: username,
			Secret:   form.GetFormItem(1).(*tview.InputField).GetText(),
		}
		cancelled = false
		app.Stop()
	})
	form.AddButton("Cancel", func() {
		app.Stop()
	})
	form.SetBorder(true).
		SetTitle(" Credentials for " + host + " ").
		SetTitleAlign(tview.AlignCenter).
		SetTitleColor(DriveBlue).
		SetBorderColor(DriveBlue)

	if err := credFormRunner(app, form, form); err != nil {
		return credstore.Credential{}, err
	}
	if ctx.Err() != nil {
		return credstore.Credential{}, ctx.Err()
	}
	if cancelled {
		return credstore.Credential{}, ErrPromptCancelled
	}
	return cred, nil
}

// FormPrompter adapts PromptCredential to the restore engine's prompter seam.
type FormPrompter struct{}

func (FormPrompter) PromptCredential(ctx context.Context, host string) (credstore.Credential, error) {
	return PromptCredential(ctx, host)
}
