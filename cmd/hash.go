package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/sri-cli/pkg/integrity"
	"github.com/kamal-hamza/sri-cli/pkg/ui"
)

var (
	hashEncoding string
	hashExpect   string
)

var hashCmd = &cobra.Command{
	Use:   "hash <file>...",
	Short: "Print the integrity string of files",
	Long: `Print "<integrity>  <file>" for each file, in the same format
vendor writes into integrity attributes.

Use --encoding base64 for the form browsers expect. With --expect, each file
is checked against the given integrity string instead and the command exits
with status 1 on a mismatch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runHash,
}

func init() {
	hashCmd.Flags().StringVarP(&hashEncoding, "encoding", "e", "", "Digest encoding: hex or base64 (default from config)")
	hashCmd.Flags().StringVar(&hashExpect, "expect", "", "Check files against this integrity string")
}

func runHash(cmd *cobra.Command, args []string) error {
	h := hasher
	if hashEncoding != "" {
		h = integrity.New(integrity.ParseEncoding(hashEncoding), hasher.ChunkSize)
	}

	if hashExpect != "" {
		return checkHashes(h, args, hashExpect)
	}

	for _, file := range args {
		digest, _, err := h.File(file)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", digest, file)
	}
	return nil
}

func checkHashes(h *integrity.Hasher, files []string, want string) error {
	// The length of the expected digest decides which encoding to compare in
	if enc := encodingOf(want); enc != h.Encoding {
		h = integrity.New(enc, h.ChunkSize)
	}

	failed := false
	for _, file := range files {
		ok, err := h.Matches(file, want)
		if err != nil {
			return err
		}
		if ok {
			ui.Println(ui.FormatSuccess(file))
		} else {
			ui.Println(ui.FormatError(file + " does not match"))
			failed = true
		}
	}

	if failed {
		return errVerifyFailed
	}
	return nil
}

// encodingOf guesses the encoding of an integrity string from its length
func encodingOf(integrityString string) integrity.Encoding {
	digest := strings.TrimPrefix(integrityString, integrity.Algorithm+"-")
	if len(digest) == 128 {
		return integrity.EncodingHex
	}
	return integrity.EncodingBase64
}
