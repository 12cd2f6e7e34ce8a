//go:build basic || database

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// Scores with the fixture weights: 1 -> 0.4, 2 -> 0.6, 3 -> 0.5, 4 -> 0.44.
const fixtureCSV = "route_id,latitude,longitude,crime_density,lighting_density\n" +
	"1,28.60,77.20,0,1\n" +
	"2,28.61,77.21,1,0\n" +
	"3,28.62,77.22,0.5,0.5\n" +
	"4,28.63,77.23,0.4,0.5\n"

const fixtureConfig = `features:
  - crime_density
  - lighting_density
weights:
  crime_density: 0.6
  lighting_density: 0.4
`

var (
	// sharedSafepathPath holds the path to a shared safepath binary built once for all tests.
	sharedSafepathPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getSafepathBinary returns the path to the safepath binary, building it once if needed.
func getSafepathBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "safepath-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		safepathPath := filepath.Join(tempDir, "safepath")
		buildCmd := exec.Command("go", "build", "-o", safepathPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		if err := buildCmd.Run(); err != nil {
			panic(fmt.Sprintf("failed to build safepath: %v", err))
		}

		sharedSafepathPath = safepathPath
	})

	return sharedSafepathPath
}

// writeFixture writes the segments CSV and a matching config file into a fresh
// directory and returns that directory.
func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "segments.csv"), []byte(fixtureCSV), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".safepath.yaml"), []byte(fixtureConfig), 0o600))
	return dir
}

// runSafepath runs the binary inside dir with extra environment variables and
// returns its stdout.
func runSafepath(t *testing.T, dir string, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getSafepathBinary(), args...)
	cmd.Dir = dir
	cmd.Env = append(append(os.Environ(), "HOME="+dir), env...)
	var stderr []byte
	out, err := cmd.Output()
	if exitErr, ok := err.(*exec.ExitError); ok {
		stderr = exitErr.Stderr
	}
	if err != nil {
		t.Logf("Command failed: %s\nStdout: %s\nStderr: %s", cmd.String(), string(out), string(stderr))
	}
	return string(out), err
}
