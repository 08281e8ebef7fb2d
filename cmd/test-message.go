package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nomihealth/flshots/records"
)

// messageCmd is the "flshots test message" command: assemble the messages for
// an upload and print them without archiving or submitting anything, so the
// output can be checked by hand against the registry's implementation guide.
var messageCmd = &cobra.Command{
	Use:     "message <file.csv>",
	Example: `flshots test message testdata/upload.csv`,
	Short:   "Assemble and print the HL7 messages for an upload without submitting",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		assembler, err := newAssembler()
		if err != nil {
			log.Fatal().Err(err).Msg("could not build message assembler")
		}
		source := records.FileSource{Path: args[0]}
		recs, err := source.Records(context.Background())
		if err != nil {
			log.Fatal().Err(err).Msg("could not read upload")
		}
		for index, rec := range recs {
			msg, err := assembler.Assemble(rec)
			if err != nil {
				log.Error().Err(err).Int("record", index).Msg("message generation failed")
				continue
			}
			fmt.Print(msg.Text())
		}
	},
}

func init() {
	testCmd.AddCommand(messageCmd)
}
