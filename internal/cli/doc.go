// Package cli implements the ec2ssm command-line interface.
//
// The root command is the whole tool: it turns flags into a config.Config,
// then runs preflight, resolve, select and dispatch in that order. Each stage
// lives in its own package; this one only wires them together through App,
// whose fields are the seams tests use to replace the inventory, the
// installer and the process runner.
//
// # Commands
//
//	ec2ssm -n <name> | -t <key[=value]> | -x <id>   connect
//	ec2ssm list -n <name> | -t <key[=value]>        print matches, don't connect
//	ec2ssm doctor [--fix] [--json]                  diagnose this machine
//	ec2ssm config                                   print effective defaults
//	ec2ssm version [--short]
//	ec2ssm completion <shell>
//
// # Exit status
//
// 0 on success, after --version, and when nothing matched the selector.
// 1 for usage, input, environment and inventory errors, and after -h.
// When a session ran and failed, the child's own status is passed through.
package cli
