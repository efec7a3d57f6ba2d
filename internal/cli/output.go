package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/samvad-hq/webapi/internal/domain"
)

func statusColor(success bool, code int) *color.Color {
	switch {
	case !success || code >= 500:
		return color.New(color.FgRed, color.Bold)
	case code >= 400:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgGreen, color.Bold)
	}
}

func printStatus(w io.Writer, method, url string, success bool, code int, elapsedMs int64) {
	cyan := color.New(color.FgCyan).SprintFunc()
	label := "FAILED"
	if success {
		label = fmt.Sprintf("%d", code)
	}
	fmt.Fprintf(w, "%s %s %s %s\n", statusColor(success, code).Sprint(label), method, url, cyan(fmt.Sprintf("(%dms)", elapsedMs)))
}

func printOutcome(w io.Writer, out domain.Outcome) {
	printStatus(w, out.Method, out.URL, out.Success, out.StatusCode, out.ElapsedMs)
	if out.Error != "" {
		fmt.Fprintf(w, "  %s %s\n", color.RedString("error:"), out.Error)
	}
	if len(out.Captures) == 0 {
		return
	}
	names := make([]string, 0, len(out.Captures))
	for name := range out.Captures {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s = %s\n", name, out.Captures[name])
	}
}
