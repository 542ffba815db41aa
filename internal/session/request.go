// Package session turns a chosen instance into an `aws ssm start-session`
// invocation and runs it in the foreground.
package session

import (
	"encoding/json"
	"strconv"

	"github.com/rileyhilliard/ec2ssm/internal/config"
)

const (
	// PortForwardDocument is the SSM document used for tunnels.
	PortForwardDocument = "AWS-StartPortForwardingSession"
	// RemotePort is the port the tunnel reaches on the instance.
	RemotePort = 22
)

// Request is everything needed to start one session. It is built once by
// NewRequest and never modified.
type Request struct {
	action    config.Action
	target    string
	region    string
	profile   string
	localPort int
}

// NewRequest builds a request. localPort only matters for tunnels.
func NewRequest(action config.Action, target, region, profile string, localPort int) Request {
	return Request{
		action:    action,
		target:    target,
		region:    region,
		profile:   profile,
		localPort: localPort,
	}
}

func (r Request) Action() config.Action { return r.action }
func (r Request) Target() string        { return r.target }
func (r Request) Region() string        { return r.region }
func (r Request) Profile() string       { return r.profile }
func (r Request) LocalPort() int        { return r.localPort }
func (r Request) RemotePort() int       { return RemotePort }

// portForwardParameters keeps the key order of --parameters stable:
// portNumber first, then localPortNumber.
type portForwardParameters struct {
	PortNumber      []string `json:"portNumber"`
	LocalPortNumber []string `json:"localPortNumber"`
}

// Parameters returns the --parameters JSON for a tunnel, e.g.
// {"portNumber":["22"],"localPortNumber":["9999"]}. It is empty for shells.
func (r Request) Parameters() (string, error) {
	if r.action != config.ActionTunnel {
		return "", nil
	}
	b, err := json.Marshal(portForwardParameters{
		PortNumber:      []string{strconv.Itoa(RemotePort)},
		LocalPortNumber: []string{strconv.Itoa(r.localPort)},
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Args returns the aws CLI arguments for the session, starting at "ssm".
func (r Request) Args() ([]string, error) {
	args := []string{"ssm", "start-session", "--target", r.target, "--region", r.region}
	if r.profile != "" {
		args = append(args, "--profile", r.profile)
	}

	if r.action == config.ActionTunnel {
		params, err := r.Parameters()
		if err != nil {
			return nil, err
		}
		args = append(args, "--document-name", PortForwardDocument, "--parameters", params)
	}

	return args, nil
}
