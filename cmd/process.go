package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nomihealth/flshots/archive"
	"github.com/nomihealth/flshots/hl7"
	"github.com/nomihealth/flshots/pipeline"
	"github.com/nomihealth/flshots/records"
	"github.com/nomihealth/flshots/registry"
	"github.com/nomihealth/flshots/sites"
)

var errUnknownEndpoint = errors.New("unknown registry endpoint: expected (P)roduction or (T)esting")

// processCmd runs one upload through the whole pipeline.
var processCmd = &cobra.Command{
	Use:   "process <upload>",
	Short: "Build, archive and submit HL7 messages for one upload",
	Long: `Process reads an upload (a local CSV file, or an object key within the
configured bucket), builds one HL7 VXU message per record, archives each
message and submits it to the FL SHOTS registry.`,
	Example: `flshots process uploads/mdc-2021-11-02.csv
flshots process --store-endpoint s3.us-east-1.amazonaws.com --store-bucket vaccines-hl7-writeback mdc-2021-11-02.csv`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		assembler, err := newAssembler()
		if err != nil {
			log.Fatal().Err(err).Msg("could not build message assembler")
		}
		client, err := newRegistryClient()
		if err != nil {
			log.Fatal().Err(err).Msg("could not build registry client")
		}
		store, source := newStoreAndSource(args[0])
		processor := &pipeline.Processor{
			Assembler:   assembler,
			Archive:     store,
			FilePrefix:  viper.GetString("file-prefix"),
			Client:      client,
			Credentials: newCredentialProvider(),
			Logger:      log.Logger,
		}
		processor.Run(context.Background(), source)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)
}

// newAssembler builds the message assembler from the configured templates and
// the fixed site directory.
func newAssembler() (*hl7.Assembler, error) {
	var renderer hl7.Renderer
	var err error
	if dir := viper.GetString("template-dir"); dir != "" {
		renderer, err = hl7.NewTemplateSetFromDir(dir)
	} else {
		renderer, err = hl7.NewTemplateSet()
	}
	if err != nil {
		return nil, err
	}
	return hl7.NewAssembler(renderer, sites.Default), nil
}

// newRegistryClient resolves the registry endpoint and returns a delivery
// client for it.
func newRegistryClient() (*registry.Client, error) {
	endpoint := registry.LookupEndpoint(viper.GetString("registry-endpoint"))
	endpointURL := endpoint.URL()
	if override := viper.GetString("registry-endpoint-url"); override != "" {
		endpointURL = override
	}
	if endpointURL == "" {
		return nil, errUnknownEndpoint
	}
	log.Info().Str("endpoint", endpoint.Name()).Str("url", endpointURL).Msg("using FL SHOTS endpoint")
	client := registry.NewClient(endpointURL)
	client.Timeout = time.Duration(viper.GetInt("registry-timeout-seconds")) * time.Second
	return client, nil
}

// newCredentialProvider returns the configured credentials, cached when a
// cache window is configured.
func newCredentialProvider() registry.CredentialProvider {
	var provider registry.CredentialProvider = registry.StaticCredentials{
		Username: viper.GetString("registry-username"),
		Password: viper.GetString("registry-password"),
	}
	if minutes := viper.GetInt("credentials-cache-minutes"); minutes > 0 {
		provider = registry.NewCachedCredentials(provider, time.Duration(minutes)*time.Minute)
	}
	return provider
}

// newStoreAndSource wires the record source and archive store. With an object
// store configured, the upload argument is an object key and messages are
// archived to the same bucket; otherwise the argument is a local file and
// messages are archived to a local directory.
func newStoreAndSource(upload string) (archive.Store, records.Source) {
	endpoint := viper.GetString("store-endpoint")
	if endpoint == "" {
		return archive.Dir{Path: viper.GetString("archive-dir")}, records.FileSource{Path: upload}
	}
	client, err := newStoreClient(endpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to object store")
	}
	bucket := viper.GetString("store-bucket")
	store := &archive.Bucket{
		Client: client,
		Bucket: bucket,
		Prefix: viper.GetString("archive-prefix"),
	}
	return store, records.BucketSource{Client: client, Bucket: bucket, Object: upload}
}

func newStoreClient(endpoint string) (*minio.Client, error) {
	return archive.NewMinioClient(
		endpoint,
		viper.GetString("store-access-key"),
		viper.GetString("store-secret-key"),
		viper.GetBool("store-use-ssl"),
	)
}
