package pylint_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/service/pylint"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/service/sandbox"
	"github.com/m-mizutani/gt"
)

func TestParseScore(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   float64
		ok     bool
	}{
		{
			name:   "typical report",
			output: "************* Module calc\ncalc.py:3:0: W0611: Unused import os\n\n------------------------------------------------------------------\nYour code has been rated at 7.50/10 (previous run: 6.00/10, +1.50)\n",
			want:   7.5,
			ok:     true,
		},
		{name: "perfect", output: "Your code has been rated at 10.00/10", want: 10, ok: true},
		{name: "integer", output: "rated at 8/10", want: 8, ok: true},
		{name: "negative is clamped", output: "Your code has been rated at -3.20/10", want: 0, ok: true},
		{name: "no rating", output: "No module named pylint", want: 0, ok: false},
		{name: "empty", output: "", want: 0, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pylint.ParseScore(tt.output)
			gt.Value(t, ok).Equal(tt.ok)
			gt.Value(t, got).Equal(tt.want)
		})
	}
}

func TestScorer_Score(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	ctx := context.Background()
	store, err := sandbox.New(t.TempDir())
	gt.NoError(t, err).Required()

	// The scored file is run as a shell script standing in for pylint.
	script := filepath.Join(store.Root(), "calc.py")
	gt.NoError(t, os.WriteFile(script, []byte("echo 'Your code has been rated at 6.25/10'\nexit 4\n"), 0o644)).Required()

	scorer := pylint.New(store, pylint.WithCommand("sh"))
	gt.Value(t, scorer.Score(ctx, script)).Equal(6.25)

	t.Run("outside the sandbox scores zero", func(t *testing.T) {
		gt.Value(t, scorer.Score(ctx, filepath.Join(t.TempDir(), "x.py"))).Equal(0.0)
	})

	t.Run("missing interpreter scores zero", func(t *testing.T) {
		broken := pylint.New(store, pylint.WithPython("no-such-python"))
		gt.Value(t, broken.Score(ctx, script)).Equal(0.0)
	})
}

func TestScorer_Live(t *testing.T) {
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}
	if err := exec.Command("python3", "-m", "pylint", "--version").Run(); err != nil {
		t.Skip("pylint not installed")
	}

	store, err := sandbox.New(t.TempDir())
	gt.NoError(t, err).Required()
	path := filepath.Join(store.Root(), "clean.py")
	gt.NoError(t, os.WriteFile(path, []byte("\"\"\"Module.\"\"\"\n\n\ndef add(a, b):\n    \"\"\"Add.\"\"\"\n    return a + b\n"), 0o644)).Required()

	score := pylint.New(store).Score(context.Background(), path)
	gt.B(t, score > 0).True()
}
