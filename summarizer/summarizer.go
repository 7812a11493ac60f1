// Package summarizer shells out to an external text-generation CLI for article
// summaries and translations.
package summarizer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Fallback replaces a summary when generation fails; the digest keeps going.
const Fallback = "요약을 생성할 수 없습니다."

const (
	maxContentLength = 10_000
	commandTimeout   = 120 * time.Second
)

const summaryPrompt = `Summarise the following tech news in British English (5-7 sentences).
If the provided content is sparse, visit the URL to read the full article.
Include:
1. Key insights for software developers
2. Actionable recommendations
3. For difficult vocabulary, add footnotes with definitions

Format:
## Summary
[summary text]

## Insights
- [insight 1]
- [insight 2]

## Action Items
- [action 1]
- [action 2]

## Vocabulary
- [word]: [definition]

Article:
Title: %s
URL: %s
Content: %s
`

const translatePrompt = `Translate the following tech news summary into natural Korean.
Keep the section structure and markdown formatting intact.

%s
`

type Summarizer struct {
	command     string
	args        []string
	timeout     time.Duration
	retryDelays []time.Duration
	logger      *slog.Logger

	// runCommand is swapped in tests to avoid spawning a real CLI.
	runCommand func(ctx context.Context, prompt string) (string, error)
}

func New(command string, logger *slog.Logger) *Summarizer {
	s := &Summarizer{
		command: command,
		args: []string{
			"-p",
			"--model", "sonnet",
			"--fallback-model", "haiku",
			"--no-session-persistence",
			"--allowedTools", "WebFetch",
		},
		timeout:     commandTimeout,
		retryDelays: []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second},
		logger:      logger,
	}
	s.runCommand = s.execute
	return s
}

// Summarize generates a summary for one article. The content is capped so a
// scraped page never blows up the prompt.
func (s *Summarizer) Summarize(ctx context.Context, title, url, content string) (string, error) {
	if len(content) > maxContentLength {
		content = content[:maxContentLength]
	}
	prompt := fmt.Sprintf(summaryPrompt, title, url, content)
	return s.runWithRetry(ctx, prompt)
}

// Translate renders an existing summary into Korean.
func (s *Summarizer) Translate(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(translatePrompt, text)
	return s.runWithRetry(ctx, prompt)
}

func (s *Summarizer) runWithRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= len(s.retryDelays); attempt++ {
		if attempt > 0 {
			delay := s.retryDelays[attempt-1]
			s.logger.Warn("Retrying summarizer",
				"attempt", attempt,
				"max_retries", len(s.retryDelays),
				"delay", delay.String(),
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		output, err := s.runCommand(ctx, prompt)
		if err == nil && output != "" {
			return output, nil
		}
		if err == nil {
			err = fmt.Errorf("empty output")
		}
		lastErr = err
	}

	return "", fmt.Errorf("summarizer failed after %d attempts: %w", len(s.retryDelays)+1, lastErr)
}

func (s *Summarizer) execute(ctx context.Context, prompt string) (string, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, s.command, s.args...)
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = "no error output"
		}
		return "", fmt.Errorf("command failed: %w (%s)", err, detail)
	}

	return strings.TrimSpace(stdout.String()), nil
}
