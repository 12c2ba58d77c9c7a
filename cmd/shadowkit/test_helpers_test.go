package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"shadowkit/internal/config"
	"shadowkit/internal/testsupport"
)

const okFFmpegScript = `#!/bin/sh
if [ "$2" = "-encoders" ]; then
  echo ' V....D libx264              libx264 H.264'
  echo ' A....D aac                  AAC'
  exit 0
fi
for last; do :; done
echo "frame=10 time=00:00:05.00 bitrate=1.0kbits/s" >&2
printf 'shadow' > "$last"
`

const failingFFmpegScript = `#!/bin/sh
echo "Invalid data found when processing input" >&2
exit 1
`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	project    string
}

func setupCLITestEnv(t *testing.T, ffmpegScript string, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	opts = append([]testsupport.ConfigOption{
		testsupport.WithShadowBinaries(ffmpegScript, "#!/bin/sh\necho 10.0\n"),
	}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))
	cfg.Logging.Level = "error"

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		project:    filepath.Join(cfg.Paths.ProjectsDir, "vlog"),
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *cliTestEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("shadowkit %v: %v\noutput:\n%s", args, err, out)
	}
	return out
}
