package sshutil

import (
	"crypto/ed25519"
	"crypto/rand"
	stderrors "errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// PinnedKey is a known_hosts entry that matched a host.
type PinnedKey struct {
	Type     string
	Filename string
	Line     int
}

// PinnedKeys returns the known_hosts entries recorded for host:port. The
// files are probed with a throwaway key: knownhosts reports every entry for
// the address when the presented key doesn't match, and nothing when the
// address is unknown. Missing files are skipped.
func PinnedKeys(files []string, host string, port int) ([]PinnedKey, error) {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil, nil
	}

	callback, err := knownhosts.New(existing...)
	if err != nil {
		return nil, fmt.Errorf("read known_hosts: %w", err)
	}

	probe, err := probeKey()
	if err != nil {
		return nil, err
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	remote := &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port}
	err = callback(addr, remote, probe)

	var keyErr *knownhosts.KeyError
	if !stderrors.As(err, &keyErr) {
		// nil would mean the random key was pinned, which can't happen.
		return nil, err
	}

	pinned := make([]PinnedKey, 0, len(keyErr.Want))
	for _, k := range keyErr.Want {
		pinned = append(pinned, PinnedKey{Type: k.Key.Type(), Filename: k.Filename, Line: k.Line})
	}
	return pinned, nil
}

// KnownHostsAddress renders host:port the way known_hosts stores it, e.g.
// "[localhost]:9999". Port 22 is stored bare.
func KnownHostsAddress(host string, port int) string {
	return knownhosts.Normalize(net.JoinHostPort(host, strconv.Itoa(port)))
}

func probeKey() (ssh.PublicKey, error) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate probe key: %w", err)
	}
	return ssh.NewPublicKey(pub)
}
