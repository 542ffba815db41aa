package doctor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	osexec "os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/rileyhilliard/ec2ssm/internal/errors"
	"github.com/rileyhilliard/ec2ssm/internal/exec"
	"github.com/rileyhilliard/ec2ssm/internal/logger"
)

const (
	// DefaultBundleBaseURL hosts the latest session-manager-plugin builds.
	DefaultBundleBaseURL = "https://s3.amazonaws.com/session-manager-downloads/plugin/latest/"

	// bundleInstallDir is where the macOS bundle installer unpacks itself.
	bundleInstallDir = "/usr/local/sessionmanagerplugin"

	downloadTimeout = 5 * time.Minute
)

// Installer puts the session-manager-plugin in place.
type Installer interface {
	// Describe says what Install will do, for prompts and reports.
	Describe() string
	Install(ctx context.Context) error
}

type bundleKind int

const (
	zipBundle bundleKind = iota
	debPackage
)

type platformBundle struct {
	path string
	kind bundleKind
}

// platformBundles maps GOOS/GOARCH to the download under DefaultBundleBaseURL.
var platformBundles = map[string]platformBundle{
	"darwin/amd64": {path: "mac/sessionmanager-bundle.zip", kind: zipBundle},
	"darwin/arm64": {path: "mac_arm64/sessionmanager-bundle.zip", kind: zipBundle},
	"linux/amd64":  {path: "ubuntu_64bit/session-manager-plugin.deb", kind: debPackage},
	"linux/arm64":  {path: "ubuntu_arm64/session-manager-plugin.deb", kind: debPackage},
}

// BundleInstaller downloads the official plugin bundle for this platform and
// runs its installer, escalating with sudo when the target isn't writable.
type BundleInstaller struct {
	PluginPath string
	BaseURL    string
	GOOS       string
	GOARCH     string
	Client     *http.Client
	Runner     exec.Runner
	Log        logger.Logger

	// Confirm, when set, is asked before anything is downloaded.
	Confirm func(prompt string) (bool, error)

	// Writable and SudoAvailable default to real filesystem and PATH probes.
	Writable      func(dir string) bool
	SudoAvailable func() bool
}

// NewBundleInstaller returns an installer for the running platform.
func NewBundleInstaller(pluginPath string, runner exec.Runner, log logger.Logger) *BundleInstaller {
	return &BundleInstaller{
		PluginPath: pluginPath,
		BaseURL:    DefaultBundleBaseURL,
		GOOS:       runtime.GOOS,
		GOARCH:     runtime.GOARCH,
		Client:     &http.Client{Timeout: downloadTimeout},
		Runner:     runner,
		Log:        log,
	}
}

// BundleURL returns the download URL for goos/goarch.
func BundleURL(baseURL, goos, goarch string) (string, bool) {
	b, ok := platformBundles[goos+"/"+goarch]
	if !ok {
		return "", false
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + b.path, true
}

// Describe implements Installer.
func (b *BundleInstaller) Describe() string {
	url, ok := BundleURL(b.baseURL(), b.GOOS, b.GOARCH)
	if !ok {
		return fmt.Sprintf("no session-manager-plugin bundle for %s/%s", b.GOOS, b.GOARCH)
	}
	return fmt.Sprintf("download %s and install session-manager-plugin to %s", url, b.PluginPath)
}

// Install implements Installer.
func (b *BundleInstaller) Install(ctx context.Context) error {
	log := b.Log
	if log == nil {
		log = logger.Noop()
	}

	platform := b.GOOS + "/" + b.GOARCH
	bundle, ok := platformBundles[platform]
	if !ok {
		return errors.NewEnvironment(
			"session-manager-plugin can't be installed automatically on "+platform,
			"Install it by hand: https://docs.aws.amazon.com/systems-manager/latest/userguide/session-manager-working-with-install-plugin.html")
	}

	useSudo, err := b.privilege()
	if err != nil {
		return err
	}

	if b.Confirm != nil {
		ok, err := b.Confirm("Install session-manager-plugin? This will " + b.Describe())
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrEnvironment, "Couldn't read confirmation", "")
		}
		if !ok {
			return errors.NewEnvironment("session-manager-plugin is required and wasn't installed",
				"Run: ec2ssm doctor --fix")
		}
	}

	tmp, err := os.MkdirTemp("", "ec2ssm-plugin-")
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrEnvironment, "Couldn't create a temp directory", "Check TMPDIR is writable.")
	}
	defer os.RemoveAll(tmp)

	url, _ := BundleURL(b.baseURL(), b.GOOS, b.GOARCH)
	archive := filepath.Join(tmp, filepath.Base(bundle.path))
	log.Info("downloading %s", url)
	if err := b.download(ctx, url, archive); err != nil {
		return err
	}

	var argv []string
	switch bundle.kind {
	case zipBundle:
		if err := unzip(archive, tmp); err != nil {
			return errors.WrapWithCode(err, errors.ErrEnvironment,
				"Couldn't unpack "+filepath.Base(archive), "The download may be corrupt; try again.")
		}
		argv = []string{filepath.Join(tmp, "sessionmanager-bundle", "install"), "-i", bundleInstallDir, "-b", b.PluginPath}
	case debPackage:
		argv = []string{"dpkg", "-i", archive}
	}
	if useSudo {
		argv = append([]string{"sudo"}, argv...)
	}

	log.Info("running %s", strings.Join(argv, " "))
	code, err := b.Runner.Run(ctx, argv[0], argv[1:]...)
	if err != nil {
		return err
	}
	if code != 0 {
		return errors.WrapWithCode(fmt.Errorf("installer exited with status %d", code), errors.ErrEnvironment,
			"The session-manager-plugin installer failed",
			"Re-run with --verbose, or install it by hand.")
	}

	if _, err := os.Stat(b.PluginPath); err != nil {
		return errors.WrapWithCode(err, errors.ErrEnvironment,
			"Installer finished but "+b.PluginPath+" is still missing",
			"Set plugin_path in the config if the plugin lives elsewhere.")
	}
	return nil
}

// privilege decides whether the install needs sudo.
func (b *BundleInstaller) privilege() (bool, error) {
	writable := b.Writable
	if writable == nil {
		writable = dirWritable
	}
	sudo := b.SudoAvailable
	if sudo == nil {
		sudo = sudoOnPath
	}

	dir := filepath.Dir(b.PluginPath)
	if writable(dir) {
		return false, nil
	}
	if sudo() {
		return true, nil
	}
	return false, errors.NewEnvironment(
		dir+" isn't writable and sudo isn't available",
		"Install session-manager-plugin as an administrator, or set plugin_path to a writable location.")
}

func (b *BundleInstaller) baseURL() string {
	if b.BaseURL == "" {
		return DefaultBundleBaseURL
	}
	return b.BaseURL
}

func (b *BundleInstaller) download(ctx context.Context, url, dest string) error {
	client := b.Client
	if client == nil {
		client = &http.Client{Timeout: downloadTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrEnvironment, "Bad download URL "+url, "")
	}

	resp, err := client.Do(req)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrEnvironment,
			"Couldn't download session-manager-plugin", "Check your network connection.")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.NewEnvironment(
			fmt.Sprintf("Downloading %s returned HTTP %d", url, resp.StatusCode),
			"Try again later, or install the plugin by hand.")
	}

	f, err := os.Create(dest)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrEnvironment, "Couldn't write "+dest, "")
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return errors.WrapWithCode(err, errors.ErrEnvironment, "Download was interrupted", "Try again.")
	}
	return f.Close()
}

// unzip extracts archive into dest, keeping file modes so the bundle's
// install script stays executable.
func unzip(archive, dest string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	root := filepath.Clean(dest) + string(os.PathSeparator)
	for _, f := range r.File {
		target := filepath.Join(dest, f.Name)
		if !strings.HasPrefix(target, root) {
			return fmt.Errorf("zip entry %q escapes the target directory", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

func dirWritable(dir string) bool {
	f, err := os.CreateTemp(dir, ".ec2ssm-probe-")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}

func sudoOnPath() bool {
	_, err := osexec.LookPath("sudo")
	return err == nil
}
