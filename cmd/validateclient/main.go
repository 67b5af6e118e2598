// Command validateclient validates a balance document read from a file or
// stdin, either in-process or against a running service over gRPC.
//
//	validateclient -kind balance -file doc.json
//	cat doc.json | validateclient -local
//
// The exit status is 0 for a valid document, 1 for violations and 2 when the
// document could not be validated.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	grpcapi "balance-schema-service/internal/api/grpc"
	"balance-schema-service/internal/config"
	"balance-schema-service/internal/models"
	"balance-schema-service/internal/observability/logging"
	"balance-schema-service/internal/schema"
)

func main() {
	addr := flag.String("addr", "localhost:50051", "gRPC server address")
	kind := flag.String("kind", schema.KindBalance, "document kind")
	file := flag.String("file", "", "document file (default stdin)")
	local := flag.Bool("local", false, "validate in-process instead of calling the server")
	dir := flag.String("documents-dir", "", "extra schema documents directory (local mode)")
	maxCoins := flag.Int("max-coins", config.Load().Limits.MaxCoins, "coin list limit (local mode)")
	timeout := flag.Duration("timeout", 10*time.Second, "request timeout")
	flag.Parse()

	logging.Init(logging.DefaultConfig())
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	payload, err := readInput(*file)
	if err != nil {
		log.Error().Err(err).Msg("failed to read document")
		os.Exit(2)
	}

	var violations []models.Violation
	if *local {
		violations, err = validateLocal(*dir, *maxCoins, *kind, payload)
	} else {
		violations, err = validateRemote(*addr, *kind, payload, *timeout)
	}
	if err != nil {
		log.Error().Err(err).Str("kind", *kind).Msg("validation failed")
		os.Exit(2)
	}

	if len(violations) == 0 {
		fmt.Println("valid")
		return
	}
	for _, v := range violations {
		fmt.Printf("%s\t%s\t%s\n", v.Path, v.Code, v.Reason)
	}
	os.Exit(1)
}

func readInput(file string) ([]byte, error) {
	if file == "" || file == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(file)
}

func validateLocal(dir string, maxCoins int, kind string, payload []byte) ([]models.Violation, error) {
	v, err := schema.New(schema.WithDocumentsDir(dir), schema.WithMaxCoins(maxCoins))
	if err != nil {
		return nil, err
	}
	doc, err := schema.Decode(payload)
	if err != nil {
		return nil, err
	}
	found, err := v.Violations(kind, doc)
	if err != nil {
		return nil, err
	}
	out := make([]models.Violation, len(found))
	for i, f := range found {
		out[i] = models.Violation{Path: f.Path, Reason: f.Reason, Code: f.Code}
	}
	return out, nil
}

func validateRemote(addr, kind string, payload []byte, timeout time.Duration) ([]models.Violation, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, errors.Wrapf(err, "connect %s", addr)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := structpb.NewStruct(map[string]interface{}{
		"kind":     kind,
		"document": string(payload),
	})
	if err != nil {
		return nil, err
	}
	resp := new(structpb.Struct)
	if err := conn.Invoke(ctx, grpcapi.ValidateMethod, req, resp); err != nil {
		return nil, err
	}

	log.Debug().
		Str("id", resp.GetFields()["id"].GetStringValue()).
		Bool("valid", resp.GetFields()["valid"].GetBoolValue()).
		Msg("Received response")
	return grpcapi.ViolationsFromStruct(resp), nil
}
