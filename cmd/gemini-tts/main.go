// main package for the gemini-tts command line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/book-expert/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/book-expert/gemini-tts-cli/internal/config"
	"github.com/book-expert/gemini-tts-cli/internal/gemini"
	"github.com/book-expert/gemini-tts-cli/internal/runner"
	"github.com/book-expert/gemini-tts-cli/internal/textinput"
	"github.com/book-expert/gemini-tts-cli/internal/voices"
)

// Flag names.
const (
	flagText         = "text"
	flagOutputFolder = "output-folder"
	flagFilename     = "filename"
	flagVoice        = "voice"
	flagRandomVoices = "random-voices"
	flagSplit        = "split-paragraphs"
)

// Flag descriptions.
const (
	flagTextDesc         = "Text to convert to speech (mutually exclusive with the text file argument)"
	flagOutputFolderDesc = "Folder to save the output audio files"
	flagFilenameDesc     = "Base name for the output files (default: first words of the text)"
	flagVoiceDesc        = "Voice to use for speech synthesis, one of the 30 prebuilt names (default Achird)"
	flagRandomVoicesDesc = "Number of random voices to use (1-30); mutually exclusive with --voice"
	flagSplitDesc        = "Split text on blank lines and create a separate audio file per paragraph"
)

// Environment variables.
const envAPIKey = "GEMINI_API_KEY"

// Log file names.
const (
	bootstrapLogFileName = "gemini-tts-bootstrap.log"
	logFileName          = "gemini-tts.log"
)

// Messages.
const (
	msgSelectedVoicesFormat = "Selected random voices: %s\n"
	msgSummaryFormat        = "Completed: %d succeeded, %d failed\n"
)

// ErrAPIKeyMissing indicates the required API credential is absent.
var ErrAPIKeyMissing = errors.New(envAPIKey + " environment variable is not set")

// cliFlags holds the parsed command-line flag values.
type cliFlags struct {
	text         string
	outputFolder string
	filename     string
	voice        string
	randomVoices int
	split        bool
}

var flags cliFlags

var rootCmd = &cobra.Command{
	Use:   "gemini-tts [text_file]",
	Short: "Convert text to speech with the Gemini TTS model",
	Long: `gemini-tts converts text from a file or from --text into WAV files using
Google's Gemini text-to-speech model.

Output filenames always carry the voice name and a sortable timestamp. With
--split-paragraphs every blank-line-separated paragraph becomes its own
file; with --random-voices the same text is synthesized once per sampled
voice. A failed paragraph/voice pair is reported and the run continues; the
exit code is non-zero when any pair failed.

The ` + envAPIKey + ` environment variable must hold the API credential; a
.env file in the working directory is honored.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&flags.text, flagText, "", flagTextDesc)
	rootCmd.Flags().StringVarP(&flags.outputFolder, flagOutputFolder, "o", "output", flagOutputFolderDesc)
	rootCmd.Flags().StringVar(&flags.filename, flagFilename, "", flagFilenameDesc)
	rootCmd.Flags().StringVar(&flags.voice, flagVoice, "", flagVoiceDesc)
	rootCmd.Flags().IntVar(&flags.randomVoices, flagRandomVoices, 0, flagRandomVoicesDesc)
	rootCmd.Flags().BoolVar(&flags.split, flagSplit, false, flagSplitDesc)
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// A .env file is a convenience, never a requirement.
	_ = godotenv.Load()

	bootstrapLog, err := logger.New(os.TempDir(), bootstrapLogFileName)
	if err != nil {
		return fmt.Errorf("failed to create bootstrap logger: %w", err)
	}

	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.Paths.BaseLogsDir, logFileName)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	defer func() {
		closeErr := log.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing logger: %v\n", closeErr)
		}
	}()

	job, err := prepareJob(cmd, args, cfg, log)
	if err != nil {
		log.Error("Configuration failed: %v", err)

		return err
	}

	apiKey := os.Getenv(envAPIKey)

	client := gemini.New(
		cfg.Gemini.APIBaseURL,
		cfg.Gemini.Model,
		apiKey,
		cfg.Gemini.Temperature,
		time.Duration(cfg.Gemini.TimeoutSeconds)*time.Second,
		log,
	)

	summary, runErr := runner.New(client, log, os.Stdout).Run(context.Background(), *job)

	fmt.Printf(msgSummaryFormat, summary.Succeeded, summary.Failed)

	return runErr
}

// prepareJob validates the configuration surface and resolves the run
// inputs. All validation happens here, before any network activity.
func prepareJob(
	cmd *cobra.Command,
	args []string,
	cfg *config.Config,
	log *logger.Logger,
) (*runner.Job, error) {
	if os.Getenv(envAPIKey) == "" {
		return nil, ErrAPIKeyMissing
	}

	voiceSequence, err := voices.Select(flags.voice, flags.randomVoices, cfg.Output.DefaultVoice, nil)
	if err != nil {
		return nil, err
	}

	if flags.randomVoices > 0 {
		log.Info("Selected random voices: %s", strings.Join(voiceSequence, ", "))
		fmt.Printf(msgSelectedVoicesFormat, strings.Join(voiceSequence, ", "))
	}

	textFile := ""
	if len(args) > 0 {
		textFile = args[0]
	}

	text, err := textinput.Resolve(textFile, flags.text)
	if err != nil {
		return nil, err
	}

	paragraphs := textinput.NewSplitter().Split(text, flags.split)
	if len(paragraphs) == 0 {
		return nil, textinput.ErrEmptyText
	}

	log.Info("Resolved %d characters into %d paragraph(s), %d voice(s)",
		len(text), len(paragraphs), len(voiceSequence))

	outputFolder := flags.outputFolder
	if !cmd.Flags().Changed(flagOutputFolder) {
		outputFolder = cfg.Output.DefaultFolder
	}

	return &runner.Job{
		Paragraphs:   paragraphs,
		Voices:       voiceSequence,
		OutputFolder: outputFolder,
		BaseName:     flags.filename,
		SplitMode:    flags.split,
	}, nil
}
