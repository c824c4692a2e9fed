package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/cloak-cli/internal/core/domain"
	"github.com/kamal-hamza/cloak-cli/internal/core/services"
	"github.com/kamal-hamza/cloak-cli/pkg/ui"
)

var (
	viewText bool
	viewOpen bool
)

var viewCmd = &cobra.Command{
	Use:     "view [id|query]",
	Aliases: []string{"show"},
	Short:   "Preview a hidden file",
	Long: `Preview a hidden file.

Images are drawn in the terminal (use --open for the system viewer).
Video, audio and PDF files open in the system or configured viewer;
PDFs can be printed as text with --text. Other types show a placeholder
and can be exported instead.

A temporary copy is created for the viewer and removed when you press
Enter.

Examples:
  cloak view          # Pick with the fuzzy finder
  cloak view 12
  cloak view report --text`,
	Args: cobra.MaximumNArgs(1),
	RunE: runView,
}

func init() {
	viewCmd.Flags().BoolVarP(&viewText, "text", "t", false, "Print the text of a PDF instead of opening it")
	viewCmd.Flags().BoolVarP(&viewOpen, "open", "o", false, "Open images in the system viewer")
}

func runView(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	file, err := selectFile(ctx, args)
	if err != nil || file == nil {
		return err
	}

	p, err := previewService.Load(ctx, file.ID)
	if err != nil {
		fmt.Println(ui.FormatError("Failed to load " + file.Name))
		return err
	}
	defer p.Release()

	fmt.Println(ui.FormatTitle(ui.CategoryIcon(string(p.File.DisplayCategory())) + " " + p.File.Name))
	fmt.Println(ui.FormatMuted(fmt.Sprintf("%s · %s · %s",
		p.File.MimeType, ui.FormatSize(p.File.SizeBytes), p.File.GetDisplayDate(appConfig.DisplayDateFormat))))
	fmt.Println()

	switch p.Kind {
	case domain.PreviewNone:
		fmt.Println(ui.FormatInfo("Preview not available for this file type"))
		fmt.Println(ui.FormatMuted(fmt.Sprintf("Export it with: cloak export %d", p.File.ID)))
		return nil

	case domain.PreviewImage:
		if !viewOpen {
			art, err := previewService.Art(p, 80, 48)
			if err != nil {
				fmt.Println(ui.FormatWarning("Cannot draw this image: " + err.Error()))
				fmt.Println(ui.FormatMuted("Try: cloak view --open " + fmt.Sprint(p.File.ID)))
				return nil
			}
			fmt.Println(art)
			return nil
		}

	case domain.PreviewPDF:
		if viewText {
			return printPDFText(p)
		}
	}

	return openAndWait(p)
}

func printPDFText(p *services.Preview) error {
	if p.TextErr != nil {
		fmt.Println(ui.FormatWarning("Could not extract text: " + p.TextErr.Error()))
		return nil
	}
	if p.Text == "" {
		fmt.Println(ui.FormatMuted("(no extractable text)"))
		return nil
	}
	fmt.Println(p.Text)
	return nil
}

// openAndWait hands the display copy to a viewer and keeps it alive until
// the user is done with it
func openAndWait(p *services.Preview) error {
	if p.Handle == nil {
		return nil
	}

	if err := OpenFile(getContext(), p.Handle.Path(), p.File.MimeType); err != nil {
		fmt.Println(ui.FormatError("Failed to open viewer"))
		return err
	}

	fmt.Println(ui.FormatSuccess("Opened in viewer"))
	fmt.Print(ui.FormatMuted("Press Enter to close and remove the temporary copy..."))
	_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
	return nil
}
