package backup

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// CompressZstd compresses inputPath to inputPath+".zst" and removes the
// original on success. A failed compression never leaves a partial .zst
// behind, and the original is only removed once the compressed file is
// fully flushed and closed.
func CompressZstd(inputPath string) (string, error) {
	outputPath := inputPath + ".zst"

	in, err := os.Open(inputPath)
	if err != nil {
		return "", fmt.Errorf("failed to open input file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}

	success := false
	defer func() {
		if !success {
			out.Close()
			_ = os.Remove(outputPath)
		}
	}()

	writer, err := zstd.NewWriter(out)
	if err != nil {
		return "", fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if _, err := io.Copy(writer, in); err != nil {
		writer.Close()
		return "", fmt.Errorf("failed to compress file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to flush compressed output: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize compressed file %q: %w", outputPath, err)
	}
	success = true

	if err := os.Remove(inputPath); err != nil {
		return "", fmt.Errorf("failed to remove original file: %w", err)
	}
	return outputPath, nil
}
