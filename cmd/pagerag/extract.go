package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pagerag/internal/transport/tesseract"
	extractuc "github.com/kailas-cloud/pagerag/internal/usecase/extract"
)

func newExtractCmd(c *cli) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "extract <pdf>",
		Short: "Extract page text from a PDF, OCRing image-only pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ocr := tesseract.New(c.cfg.Extraction.OCRLanguages, c.logger)
			c.logger.Debug("OCR engine", zap.String("tesseract", ocr.Version()))

			svc := extractuc.New(extractuc.OpenPDF, ocr, c.logger)
			res, err := svc.Extract(cmd.Context(), args[0], out)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Extracted text saved to: %s (%d pages, %d OCR)\n",
				res.OutputPath, len(res.Pages), len(res.OCRPages))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output .txt path (default: next to the PDF)")
	return cmd
}
