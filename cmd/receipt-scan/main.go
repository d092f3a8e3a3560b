package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/receipt-scan/internal/extract"
	"github.com/zombor/receipt-scan/internal/preprocess"
	"github.com/zombor/receipt-scan/internal/receipt"
	"github.com/zombor/receipt-scan/internal/recognition"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	// A missing .env is fine; flags and the environment still apply
	_ = godotenv.Load()

	fs := ff.NewFlagSet("receipt-scan")
	var (
		port           = fs.IntLong("port", 8080, "HTTP server port")
		spoolPath      = fs.StringLong("spool", filepath.Join(os.TempDir(), "receipt-scan"), "Directory for staging uploads during a scan")
		recognizerType = fs.StringLong("recognizer", "tesseract", "Recognizer: 'tesseract', 'gemini' or 'ollama'")
		tesseractPath  = fs.StringLong("tesseract-path", "tesseract", "Path to the tesseract binary")
		ocrLang        = fs.StringLong("ocr-lang", "eng", "Tesseract language hint")
		geminiKey      = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel    = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL      = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel    = fs.StringLong("ollama-model", "llava", "Ollama vision model name")
		targetWidth    = fs.IntLong("target-width", preprocess.DefaultOptions().TargetWidth, "Minimum image width before recognition")
		threshold      = fs.IntLong("threshold", int(preprocess.DefaultOptions().Threshold), "Binarization threshold (1-255)")
		maxUploadMB    = fs.IntLong("max-upload-mb", 50, "Maximum upload size in megabytes")
		maxScans       = fs.IntLong("max-concurrent-scans", 2, "Maximum number of scans running at once")
		ocrTimeout     = fs.DurationLong("ocr-timeout", 60*time.Second, "Time limit for scanning a single receipt")
		scanFile       = fs.StringLong("file", "", "Scan this file, print the result as JSON and exit")
		showVersion    = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_SCAN"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if *threshold < 1 || *threshold > 255 {
		slog.Error("Invalid threshold", "threshold", *threshold, "valid", "1-255")
		os.Exit(1)
	}

	ctx := context.Background()

	var recognizer recognition.Recognizer
	var err error
	switch *recognizerType {
	case "tesseract":
		slog.Info("Initializing Tesseract recognizer...", "binary", *tesseractPath, "lang", *ocrLang)
		recognizer, err = recognition.NewTesseract(*tesseractPath, *ocrLang)
	case "gemini":
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini recognizer...", "model", *geminiModel)
		recognizer, err = recognition.NewGemini(ctx, apiKey, *geminiModel)
	case "ollama":
		slog.Info("Initializing Ollama recognizer...", "url", *ollamaURL, "model", *ollamaModel)
		recognizer, err = recognition.NewOllama(*ollamaURL, *ollamaModel)
	default:
		slog.Error("Invalid recognizer type", "type", *recognizerType, "valid", "tesseract, gemini or ollama")
		os.Exit(1)
	}
	if err != nil {
		slog.Error("Failed to initialize recognizer", "type", *recognizerType, "error", err)
		os.Exit(1)
	}
	defer recognizer.Close()

	spool, err := receipt.NewLocalStorage(*spoolPath)
	if err != nil {
		slog.Error("Failed to initialize spool", "error", err)
		os.Exit(1)
	}

	preprocessor := preprocess.New(preprocess.Options{
		TargetWidth: *targetWidth,
		Threshold:   uint8(*threshold),
	})
	service := receipt.NewService(spool, preprocessor, recognizer, extract.New())

	if *scanFile != "" {
		if err := scanOnce(ctx, service, *scanFile, *ocrTimeout); err != nil {
			slog.Error("Scan failed", "file", *scanFile, "error", err)
			os.Exit(1)
		}
		return
	}

	server := receipt.NewServer(service, receipt.ServerOptions{
		MaxUploadSize:      int64(*maxUploadMB) << 20,
		MaxConcurrentScans: int64(*maxScans),
		RecognitionTimeout: *ocrTimeout,
	})

	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown error", "error", err)
	}
}

// scanOnce scans a single file from disk and prints the JSON response
func scanOnce(ctx context.Context, service *receipt.Service, path string, timeout time.Duration) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	result, err := service.ScanReceipt(ctx, filepath.Base(path), data, contentType)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(receipt.NewScanResponse(result))
}
