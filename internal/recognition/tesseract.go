package recognition

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

const engineTesseract = "tesseract"

// Tesseract implements the Recognizer interface using the tesseract CLI
type Tesseract struct {
	binary   string
	language string
}

// NewTesseract creates a new Tesseract Recognizer instance
func NewTesseract(binary string, language string) (*Tesseract, error) {
	if binary == "" {
		binary = "tesseract"
	}
	if language == "" {
		language = "eng"
	}

	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, newError(engineTesseract, "finding binary %q: %w", binary, err)
	}

	return &Tesseract{
		binary:   path,
		language: language,
	}, nil
}

func (t *Tesseract) args() []string {
	return []string{
		"stdin", "stdout",
		"-l", t.language,
		"-c", "tessedit_char_whitelist=" + CharWhitelist,
		"-c", "preserve_interword_spaces=1",
	}
}

// Recognize pipes the image through tesseract and returns its stdout
func (t *Tesseract) Recognize(ctx context.Context, image []byte) (string, error) {
	cmd := exec.CommandContext(ctx, t.binary, t.args()...)
	cmd.Stdin = bytes.NewReader(image)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", &Error{Engine: engineTesseract, Err: ctxErr}
		}
		return "", newError(engineTesseract, "running tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}

// Close is a no-op; each call runs its own process
func (t *Tesseract) Close() error {
	return nil
}
