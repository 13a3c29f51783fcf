package cli

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/logscost/logscost/pkg/version"
)

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner(versionStr string) {
	banner := `
            __                                          __
           / /   ____  ____ _________________  _______ / /_
          / /   / __ \/ __ '/ ___/ ___/ __  / / ___/ _/ __/
         / /___/ /_/ / /_/ (__  ) /__/ /_/ / (__  ) /_/ /_
        /_____/\____/\__, /____/\___/\____/ /____/\__/\__/
                    /____/
        `
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Println(red(banner))

	// Obtem a string formatada da versão através do pacote version
	formattedVersion := version.FormatVersion()
	fmt.Println(blue(fmt.Sprintf("CloudWatch Logs Cost Monitor (v%s)", formattedVersion)))
}
