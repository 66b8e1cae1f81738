package main

import "github.com/urfave/cli/v3"

var (
	inputPath  string
	outputPath string
	quantize   bool
	skipVerify bool

	pythonPath string
	tfLogLevel string
	configFile string

	logLevel  string
	logFormat string
	debug     bool
)

func convertFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "path to the Keras model (.h5, .keras or SavedModel directory)",
			Destination: &inputPath,
			Local:       true,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "destination path for the .tflite file",
			Destination: &outputPath,
			Local:       true,
		},
		&cli.BoolFlag{
			Name:        "quantize",
			Usage:       "apply dynamic range quantization",
			Destination: &quantize,
			Local:       true,
		},
		&cli.BoolFlag{
			Name:        "skip-verify",
			Usage:       "do not load the result into a TFLite interpreter",
			Destination: &skipVerify,
			Local:       true,
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "python",
			Usage:       "Python interpreter with TensorFlow installed (default $TFLITECONV_PYTHON or python3)",
			Destination: &pythonPath,
		},
		&cli.StringFlag{
			Name:        "tf-log-level",
			Usage:       "TF_CPP_MIN_LOG_LEVEL for the TensorFlow worker (0-3)",
			Value:       "2",
			Destination: &tfLogLevel,
		},
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml",
			Sources:     cli.EnvVars(envConfig),
			Destination: &configFile,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging and show TensorFlow output (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}
