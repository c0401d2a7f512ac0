package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"livebundle/internal/app"
	"livebundle/internal/core"
	"livebundle/internal/types"
)

// promptFlavor asks on in which flavor to install. The answer may be the
// flavor name or its number in the list. The read blocks until a line or
// EOF arrives; cancellation is only checked before prompting.
func promptFlavor(in io.Reader, out io.Writer) app.FlavorChooser {
	return func(ctx context.Context, candidates []types.BundleDescriptor) (types.Flavor, error) {
		if err := ctx.Err(); err != nil {
			return types.FlavorNone, err
		}
		flavors := core.Flavors(candidates)
		fmt.Fprintln(out, "Several bundles are available:")
		for i, flavor := range flavors {
			fmt.Fprintf(out, "  %d) %s\n", i+1, flavor)
		}
		fmt.Fprint(out, "Choose a flavor: ")

		line, err := bufio.NewReader(in).ReadString('\n')
		answer := strings.TrimSpace(line)
		if err != nil && answer == "" {
			return types.FlavorNone, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("no flavor chosen").
				WithCause(err)
		}
		return matchFlavor(answer, flavors)
	}
}

func matchFlavor(answer string, flavors []types.Flavor) (types.Flavor, error) {
	if index, err := strconv.Atoi(answer); err == nil && index >= 1 && index <= len(flavors) {
		return flavors[index-1], nil
	}
	for _, flavor := range flavors {
		if strings.EqualFold(answer, string(flavor)) {
			return flavor, nil
		}
	}
	return types.FlavorNone, errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("invalid flavor choice: %q", answer))
}
