package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chzyer/readline"
	"github.com/rickchristie/convo"
	"github.com/rickchristie/convo/checkpoint"
	"github.com/rickchristie/convo/config"
	"github.com/rickchristie/convo/internal/tt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, key := range []string{"OPENAI_API_KEY", "CONVO_API_KEY", "CONVO_CHECKPOINTS", "CONVO_MAX_ITERATIONS"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func execute(t *testing.T, model convo.Model, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeApp(t, model, args...)
	return out, err
}

func executeApp(t *testing.T, model convo.Model, args ...string) (string, *app, error) {
	t.Helper()
	cmd, a := newRootCommand(func(config.Config) (convo.Model, error) {
		return model, nil
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.ExecuteContext(context.Background())
	require.NoError(t, a.Close())
	return out.String(), a, err
}

func assertInOrder(t *testing.T, out string, parts ...string) {
	t.Helper()
	rest := out
	for _, part := range parts {
		idx := strings.Index(rest, part)
		require.GreaterOrEqual(t, idx, 0, "missing %q (in order) in:\n%s", part, out)
		rest = rest[idx+len(part):]
	}
}

func TestAsk(t *testing.T) {
	isolate(t)
	model := tt.NewMockModel().AddResponses("Machine learning lets computers learn patterns from data.")

	out, err := execute(t, model, "ask", "What is machine learning?", "--model", "gpt-4o")
	require.NoError(t, err)

	assert.Equal(t, "Machine learning lets computers learn patterns from data.\n", out)
	assert.Equal(t, []string{"What is machine learning?"}, tt.MessageTexts(model.LastMessages()))
	require.Len(t, model.CapturedOptions, 1)
	assert.Equal(t, "gpt-4o", model.CapturedOptions[0].Model)
}

func TestAsk_Stream(t *testing.T) {
	isolate(t)
	model := tt.NewMockModel().AddResponses("streamed reply")

	out, err := execute(t, model, "ask", "--stream", "hi")
	require.NoError(t, err)

	assert.Equal(t, "streamed reply\n", out)
}

func TestReact(t *testing.T) {
	type input struct {
		replies []string
		repeat  string
		args    []string
	}

	type expected struct {
		parts  []string
		errMsg string
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name: "tool call then answer",
			input: input{replies: []string{
				"Thought: check the weather.\nAction: check_weather: Tokyo",
				"Pack layers and stay at Shibuya Excel Hotel.",
			}},
			expected: expected{parts: []string{
				"Question: What should I pack for a trip to Tokyo and where should I stay?",
				"[Agent Response]",
				"Action: check_weather: Tokyo",
				"[Executing] check_weather(Tokyo)",
				"[Result] Tokyo: Partly cloudy, 22°C, high humidity",
				"[Complete] Agent has provided final answer.",
				"Final answer:",
				"Pack layers and stay at Shibuya Excel Hotel.",
			}},
		},
		{
			name: "timeout is not a failure",
			input: input{
				repeat: "Action: search_hotels: Paris, luxury",
				args:   []string{"--max-iterations", "2", "Where should I stay in Paris?"},
			},
			expected: expected{parts: []string{
				"Question: Where should I stay in Paris?",
				"[Result] Luxury hotels in Paris: Plaza Athénée, Ritz Paris",
				"[Result] Luxury hotels in Paris: Plaza Athénée, Ritz Paris",
				"[Timeout] Max iterations reached",
				"No final answer after 2 iterations.",
			}},
		},
		{
			name:  "unknown tool fails",
			input: input{replies: []string{"Action: book_flight: Tokyo"}},
			expected: expected{
				parts:  []string{"[Error] Unknown tool: book_flight"},
				errMsg: `unknown tool "book_flight"`,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			isolate(t)
			model := tt.NewMockModel().AddResponses(tc.input.replies...)
			if tc.input.repeat != "" {
				model.Repeat(tc.input.repeat)
			}

			out, err := execute(t, model, append([]string{"react"}, tc.input.args...)...)
			if tc.expected.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expected.errMsg)
			} else {
				require.NoError(t, err)
			}
			assertInOrder(t, out, tc.expected.parts...)
		})
	}
}

func TestReflect(t *testing.T) {
	isolate(t)
	model := tt.NewMockModel().AddResponses("DRAFT 1", "CRITIQUE 1", "DRAFT 2")

	out, err := execute(t, model, "reflect", "Write a post about caching")
	require.NoError(t, err)

	assert.Equal(t, 3, model.CallCount())
	assertInOrder(t, out, "[GENERATE]", "DRAFT 1", "[CRITIQUE]", "CRITIQUE 1", "Final draft:", "DRAFT 2")
}

func TestReflexionAndState(t *testing.T) {
	isolate(t)
	db := filepath.Join(t.TempDir(), "threads.db")
	model := tt.NewMockModel().AddResponses(
		"OUTLINE",
		`{"queries": ["solar power costs"]}`,
		"ESSAY 1",
		"FEEDBACK",
		`{"queries": ["wind energy"]}`,
		"ESSAY 2",
	)

	out, err := execute(t, model, "reflexion", "--thread", "1", "--checkpoints", db, "Renewable energy")
	require.NoError(t, err)
	assert.Equal(t, 6, model.CallCount())
	assertInOrder(t, out, "[PLAN]", "OUTLINE", "[WRITE]", "ESSAY 2", "Thread: 1 (step 6)", "Final Essay:", "ESSAY 2")

	out, err = execute(t, tt.NewMockModel(), "state", "--thread", "1", "--checkpoints", db)
	require.NoError(t, err)
	assertInOrder(t, out,
		"=== Writer State (1) ===",
		"Step: 6",
		"Topic: Renewable energy",
		"Iteration: 3 of 2",
		"Next step: END",
		"Final Essay:",
		"ESSAY 2",
	)

	out, err = execute(t, tt.NewMockModel(), "state", "--checkpoints", db)
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)
}

func TestFailedCommandReleasesResources(t *testing.T) {
	isolate(t)
	db := filepath.Join(t.TempDir(), "threads.db")
	model := tt.NewMockModel().AddError(errors.New("backend down"))

	cmd, a := newRootCommand(func(config.Config) (convo.Model, error) {
		return model, nil
	})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"reflexion", "--thread", "1", "--checkpoints", db, "--log-level", "error", "Solar"})
	require.Error(t, cmd.ExecuteContext(context.Background()))

	store := a.store
	require.NotNil(t, store)
	require.NoError(t, a.Close())
	assert.Empty(t, a.closers)

	_, err := store.Threads(context.Background())
	assert.ErrorIs(t, err, checkpoint.ErrClosed)
	require.NoError(t, a.Close())
}

func TestState_Empty(t *testing.T) {
	isolate(t)

	out, err := execute(t, tt.NewMockModel(), "state")
	require.NoError(t, err)
	assert.Equal(t, "No saved threads.\n", out)

	out, err = execute(t, tt.NewMockModel(), "state", "--thread", "user_1")
	require.NoError(t, err)
	assert.Equal(t, "Thread user_1 has no saved state.\n", out)
}

func TestInvalidConfig(t *testing.T) {
	isolate(t)

	_, err := execute(t, tt.NewMockModel(), "ask", "hi", "--provider", "bard")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

type scriptedReader struct {
	lines []string
	err   error
}

func (r *scriptedReader) Readline() (string, error) {
	if len(r.lines) == 0 {
		return "", r.err
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func TestRunREPL(t *testing.T) {
	type expected struct {
		sent  []string
		parts []string
		err   error
	}

	readErr := errors.New("tty gone")

	tests := []struct {
		name     string
		input    *scriptedReader
		expected expected
	}{
		{
			name:  "exit command",
			input: &scriptedReader{lines: []string{"", "hello", "  how are you?  ", "exit", "ignored"}},
			expected: expected{
				sent:  []string{"hello", "how are you?"},
				parts: []string{"Assistant: ", "Goodbye!"},
			},
		},
		{
			name:  "interrupt",
			input: &scriptedReader{lines: []string{"hello"}, err: readline.ErrInterrupt},
			expected: expected{
				sent:  []string{"hello"},
				parts: []string{"Goodbye!"},
			},
		},
		{
			name:  "send error continues",
			input: &scriptedReader{lines: []string{"fail", "hello"}, err: io.EOF},
			expected: expected{
				sent:  []string{"fail", "hello"},
				parts: []string{"Error: backend down", "Goodbye!"},
			},
		},
		{
			name:     "read error",
			input:    &scriptedReader{err: readErr},
			expected: expected{err: readErr},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var (
				out  bytes.Buffer
				sent []string
			)
			err := runREPL(context.Background(), tc.input, &out, func(_ context.Context, text string) error {
				sent = append(sent, text)
				if text == "fail" {
					return errors.New("backend down")
				}
				return nil
			})

			if tc.expected.err != nil {
				assert.ErrorIs(t, err, tc.expected.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected.sent, sent)
			assertInOrder(t, out.String(), tc.expected.parts...)
		})
	}
}
