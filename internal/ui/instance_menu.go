package ui

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rileyhilliard/ec2ssm/internal/errors"
	"github.com/rileyhilliard/ec2ssm/internal/inventory"
)

// MenuPrompt is printed after the numbered list.
const MenuPrompt = "Select an instance [1]: "

// PromptSelection prints a 1-based menu of instances to out and reads a
// single line from in. An empty answer picks the first entry. Anything that
// is not a number in [1, len(instances)] is an InputError; there is no
// second attempt.
func PromptSelection(instances []inventory.Instance, in io.Reader, out io.Writer) (inventory.Instance, error) {
	if len(instances) == 0 {
		return inventory.Instance{}, errors.NewInput("Nothing to select from", "")
	}

	for i, inst := range instances {
		fmt.Fprintf(out, "%d) %s\n", i+1, inst.Label())
	}
	fmt.Fprint(out, MenuPrompt)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return inventory.Instance{}, errors.WrapWithCode(err, errors.ErrInput,
			"Couldn't read your selection",
			"Pass -x <instance-id> to skip the menu.")
	}
	if err == io.EOF {
		// Keep the terminal tidy when stdin closed without a newline.
		fmt.Fprintln(out)
	}

	idx, err := ParseChoice(line, len(instances))
	if err != nil {
		return inventory.Instance{}, err
	}
	return instances[idx], nil
}

// ParseChoice turns a typed menu answer into a zero-based index.
func ParseChoice(answer string, count int) (int, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > count {
		return 0, errors.NewInput(
			fmt.Sprintf("Invalid selection %q", answer),
			fmt.Sprintf("Enter a number between 1 and %d.", count))
	}
	return n - 1, nil
}
