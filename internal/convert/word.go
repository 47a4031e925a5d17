package convert

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// WordAutomation drives an installed Microsoft Word through the platform's
// scripting host: AppleScript on macOS, PowerShell COM automation on
// Windows. It covers the hosts where LibreOffice is typically absent.
type WordAutomation struct {
	goos string
}

func NewWordAutomation() *WordAutomation {
	return &WordAutomation{goos: runtime.GOOS}
}

func (w *WordAutomation) Name() string { return "word" }

func (w *WordAutomation) Available() bool {
	switch w.goos {
	case "darwin":
		_, err := exec.LookPath("osascript")
		return err == nil
	case "windows":
		_, err := exec.LookPath("powershell")
		return err == nil
	default:
		return false
	}
}

func (w *WordAutomation) Convert(ctx context.Context, inputPath, outputPath string) error {
	var cmd *exec.Cmd
	switch w.goos {
	case "darwin":
		script := fmt.Sprintf(`tell application "Microsoft Word"
	open POSIX file %q
	set doc to active document
	save as doc file name POSIX file %q file format format PDF
	close doc saving no
end tell`, inputPath, outputPath)
		cmd = exec.CommandContext(ctx, "osascript", "-e", script)
	case "windows":
		script := fmt.Sprintf(`$word = New-Object -ComObject Word.Application
$word.Visible = $false
$doc = $word.Documents.Open(%q)
$doc.SaveAs(%q, 17)
$doc.Close()
$word.Quit()`, inputPath, outputPath)
		cmd = exec.CommandContext(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", script)
	default:
		return fmt.Errorf("word automation unsupported on %s", w.goos)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("word: %w: %s", err, excerpt(stderr.String()))
	}
	return nil
}
