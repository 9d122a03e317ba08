package pytest_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/model"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/service/pytest"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/service/sandbox"
	"github.com/m-mizutani/gt"
)

// The runner is exercised with "sh" as the test command so a test file is
// simply a shell script deciding its own exit status.
func setup(t *testing.T, opts ...pytest.Option) (*pytest.Runner, *sandbox.Store) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	store, err := sandbox.New(t.TempDir())
	gt.NoError(t, err).Required()
	opts = append([]pytest.Option{pytest.WithCommand("sh")}, opts...)
	return pytest.New(store, opts...), store
}

func writeScript(t *testing.T, store *sandbox.Store, name, body string) string {
	t.Helper()
	path := filepath.Join(store.Root(), name)
	gt.NoError(t, os.WriteFile(path, []byte(body), 0o644)).Required()
	return path
}

func TestRunner_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("passing run", func(t *testing.T) {
		runner, store := setup(t)
		path := writeScript(t, store, "calc_test.py", "echo '1 passed'\n")

		passed, output, err := runner.Execute(ctx, path)
		gt.NoError(t, err).Required()
		gt.B(t, passed).True()
		gt.String(t, output).Contains("1 passed")
	})

	t.Run("failing run combines stdout and stderr", func(t *testing.T) {
		runner, store := setup(t)
		path := writeScript(t, store, "calc_test.py", "echo 'FAILED test_add'\necho 'AssertionError' 1>&2\nexit 1\n")

		passed, output, err := runner.Execute(ctx, path)
		gt.NoError(t, err).Required()
		gt.B(t, passed).False()
		gt.Value(t, output).Equal("FAILED test_add\nAssertionError\n")
	})

	t.Run("runs in the directory of the test file", func(t *testing.T) {
		runner, store := setup(t)
		path := writeScript(t, store, "cwd_test.py", "test -f cwd_test.py\n")

		passed, _, err := runner.Execute(ctx, path)
		gt.NoError(t, err).Required()
		gt.B(t, passed).True()
	})

	t.Run("timeout is a failed run", func(t *testing.T) {
		runner, store := setup(t, pytest.WithTimeout(100*time.Millisecond))
		path := writeScript(t, store, "slow_test.py", "exec sleep 5\n")

		passed, output, err := runner.Execute(ctx, path)
		gt.NoError(t, err).Required()
		gt.B(t, passed).False()
		gt.String(t, output).Contains("timed out")
	})

	t.Run("missing command is a failed run", func(t *testing.T) {
		runner, store := setup(t, pytest.WithCommand("no-such-pytest-binary"))
		path := writeScript(t, store, "calc_test.py", "")

		passed, output, err := runner.Execute(ctx, path)
		gt.NoError(t, err).Required()
		gt.B(t, passed).False()
		gt.String(t, output).NotEqual("")
	})

	t.Run("outside the sandbox", func(t *testing.T) {
		runner, _ := setup(t)
		_, _, err := runner.Execute(ctx, filepath.Join(t.TempDir(), "x_test.py"))
		var perr *model.PathError
		gt.B(t, errors.As(err, &perr)).True()
	})
}
