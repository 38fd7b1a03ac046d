package support

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplyJoinsMatchingAnswersInOrder(t *testing.T) {
	kb := DefaultKnowledgeBase()

	reply := kb.Reply("Why is my iPad SLOW?")

	slow := answerText(t, kb, "slow")
	ipad := answerText(t, kb, "ipad")
	assert.Equal(t, slow+" "+ipad, reply)
}

func TestReplyMatchesMultiWordKey(t *testing.T) {
	kb := DefaultKnowledgeBase()
	assert.Equal(t, answerText(t, kb, "risk score"), kb.Reply("what does the risk score mean"))
}

func TestReplyFallbacks(t *testing.T) {
	kb := DefaultKnowledgeBase()

	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"greeting", "Hi there", kb.Greeting},
		{"hello with punctuation", "hello!", kb.Greeting},
		{"help", "I need help", kb.Help},
		{"hi inside a word is not a greeting", "this thing", kb.Unknown},
		{"help inside a word is not a request", "helpful", kb.Unknown},
		{"empty", "", kb.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kb.Reply(tt.message))
		})
	}
}

func TestLoadKnowledgeBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.yaml")
	content := `
answers:
  - key: VPN
    text: Reconnect to the hospital VPN.
greeting: Welcome.
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	kb, err := LoadKnowledgeBase(path)
	require.NoError(t, err)

	assert.Equal(t, "vpn", kb.Answers[0].Key)
	assert.Equal(t, "Reconnect to the hospital VPN.", kb.Reply("my VPN dropped"))
	assert.Equal(t, "Welcome.", kb.Reply("hello"))
	assert.Equal(t, DefaultKnowledgeBase().Help, kb.Help)
}

func TestLoadKnowledgeBaseErrors(t *testing.T) {
	kb, err := LoadKnowledgeBase("")
	require.NoError(t, err)
	assert.NotEmpty(t, kb.Answers)

	kb, err = LoadKnowledgeBase(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	assert.NotEmpty(t, kb.Answers, "read failures fall back to defaults")

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("greeting: hi\n"), 0o600))
	_, err = LoadKnowledgeBase(empty)
	assert.Error(t, err)

	blankKey := filepath.Join(t.TempDir(), "blank.yaml")
	require.NoError(t, os.WriteFile(blankKey, []byte("answers:\n  - key: \"\"\n    text: x\n"), 0o600))
	_, err = LoadKnowledgeBase(blankKey)
	assert.Error(t, err)
}

func answerText(t *testing.T, kb KnowledgeBase, key string) string {
	t.Helper()
	for _, a := range kb.Answers {
		if strings.EqualFold(a.Key, key) {
			return a.Text
		}
	}
	t.Fatalf("no answer for %q", key)
	return ""
}
