package runner

import (
	"github.com/logrusorgru/aurora"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/netsurvey/pkg/version"
)

const banner = "netsurvey"

func showBanner(noColor bool) {
	au := aurora.NewAurora(!noColor)
	gologger.Print().Msgf("%s %s\n\n", au.Bold(au.Cyan(banner)), version.GetVersion())
}
