// Package pipeline runs one upload through assembly, archival and delivery
package pipeline

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nomihealth/flshots/archive"
	"github.com/nomihealth/flshots/hl7"
	"github.com/nomihealth/flshots/records"
	"github.com/nomihealth/flshots/registry"
)

// Deliverer sends one assembled message to the registry. A nil outcome means
// delivery was abandoned after the retry bound.
type Deliverer interface {
	Deliver(ctx context.Context, creds registry.Credentials, hl7Message string, logger zerolog.Logger) *registry.Outcome
}

// defaultFilePrefix names archived messages when no prefix is configured.
const defaultFilePrefix = "NomiHealth"

// Processor processes the records of one upload sequentially. Every failure
// is per-record and logged; the batch always continues to the next record.
type Processor struct {
	Assembler   *hl7.Assembler
	Archive     archive.Store
	FilePrefix  string
	Client      Deliverer
	Credentials registry.CredentialProvider
	Logger      zerolog.Logger
}

// Run reads every record from the source and pipelines each one through
// assembly, archival and delivery before starting the next.
func (p *Processor) Run(ctx context.Context, source records.Source) {
	logger := p.Logger.With().
		Str("run_id", uuid.New().String()).
		Str("file_used", source.Name()).
		Logger()
	logger.Info().Msg("processing upload")
	recs, err := source.Records(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("could not read upload")
		return
	}
	logger.Info().Int("records", len(recs)).Msg("records to process")
	creds, err := p.Credentials.Credentials(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("could not obtain registry credentials")
		return
	}
	for index, rec := range recs {
		p.processRecord(ctx, logger, creds, rec, index)
	}
	logger.Info().Msg("upload complete")
}

func (p *Processor) processRecord(ctx context.Context, logger zerolog.Logger, creds registry.Credentials, rec records.Record, index int) {
	recordLogger := logger.With().
		Str("instance", rec.String(records.FieldInstance)).
		Str("patient_id", rec.String(records.FieldPatientID)).
		Str("vaccine_date", rec.String(records.FieldVaccineDate)).
		Logger()
	msg, err := p.Assembler.Assemble(rec)
	if err != nil {
		recordLogger.Error().Err(err).Msg("message generation failed")
		return
	}
	recordLogger.Info().Str("control_id", msg.ControlID).Msg("message assembled")
	text := msg.Text()
	name := archive.ObjectName(p.filePrefix(), rec.String(records.FieldPatientID), index)
	if err := p.Archive.Put(ctx, name, text); err != nil {
		recordLogger.Error().Err(err).Str("object", name).Msg("unable to archive message")
	} else {
		recordLogger.Info().Str("object", name).Msg("archived message")
	}
	if outcome := p.Client.Deliver(ctx, creds, text, recordLogger); outcome == nil {
		recordLogger.Error().Msg("delivery abandoned after retries")
	}
}

func (p *Processor) filePrefix() string {
	if p.FilePrefix != "" {
		return p.FilePrefix
	}
	return defaultFilePrefix
}
