package main

import (
	"fmt"
	"os"

	"github.com/logscost/logscost/internal/adapter/driven/aws"
	"github.com/logscost/logscost/internal/adapter/driven/config"
	"github.com/logscost/logscost/internal/adapter/driven/export"
	"github.com/logscost/logscost/internal/adapter/driving/cli"
	"github.com/logscost/logscost/internal/application/usecase"
	"github.com/logscost/logscost/pkg/console"
	"github.com/logscost/logscost/pkg/version"
)

func main() {
	// Inicializa o aplicativo CLI
	app := cli.NewCLIApp(version.Version)

	// Inicializa os repositórios
	awsRepo := aws.NewAWSRepository()
	exportRepo := export.NewExportRepository()
	configRepo := config.NewConfigRepository()
	consoleImpl := console.NewConsole()

	// Inicializa o caso de uso
	monitorUseCase := usecase.NewMonitorUseCase(
		awsRepo,
		exportRepo,
		configRepo,
		consoleImpl,
	)

	// Define o caso de uso no aplicativo CLI
	app.SetMonitorUseCase(monitorUseCase)

	// Executa o aplicativo
	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
