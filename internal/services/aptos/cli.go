package aptos

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/gabrielcapilla/jukebox-driver/internal/domain"
	"github.com/gabrielcapilla/jukebox-driver/internal/logger"

	"github.com/buger/jsonparser"
)

var execCommand = exec.CommandContext

// CLISubmitter signs and submits entry functions by running the aptos CLI,
// which waits for the transaction to commit before printing its result.
type CLISubmitter struct {
	binary  string
	nodeURL string
	account Account
}

func NewCLISubmitter(binary, nodeURL string, account Account) *CLISubmitter {
	if binary == "" {
		binary = "aptos"
	}
	return &CLISubmitter{binary: binary, nodeURL: nodeURL, account: account}
}

func (s *CLISubmitter) SubmitEntryFunction(ctx context.Context, fn domain.EntryFunction) (domain.TxOutcome, error) {
	keyFile, err := s.writeKeyFile()
	if err != nil {
		return domain.TxOutcome{}, err
	}
	defer os.Remove(keyFile)

	args := moveRunArgs(fn, s.account.Address, s.nodeURL, keyFile)
	logger.Log.Debug().Str("function_id", fn.Module.FunctionID(fn.Function)).Uint64("max_gas", fn.MaxGas).Msg("Submitting entry function via aptos CLI")

	output, runErr := s.execute(ctx, args...)
	if ctx.Err() != nil {
		return domain.TxOutcome{}, fmt.Errorf("aptos move run did not finish: %w", ctx.Err())
	}
	return parseRunOutput(output, runErr)
}

func moveRunArgs(fn domain.EntryFunction, sender Address, nodeURL, keyFile string) []string {
	args := []string{
		"move", "run",
		"--function-id", fn.Module.FunctionID(fn.Function),
		"--sender-account", sender.String(),
		"--private-key-file", keyFile,
		"--url", nodeURL,
		"--max-gas", strconv.FormatUint(fn.MaxGas, 10),
		"--gas-unit-price", strconv.FormatUint(fn.GasUnitPrice, 10),
		"--assume-yes",
	}
	if len(fn.Args) > 0 {
		args = append(args, "--args")
		args = append(args, fn.Args...)
	}
	return args
}

func (s *CLISubmitter) writeKeyFile() (string, error) {
	f, err := os.CreateTemp("", "jukebox-driver-key-*")
	if err != nil {
		return "", fmt.Errorf("could not create key file: %w", err)
	}
	if _, err := f.WriteString(s.account.PrivateKeyHex()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("could not write key file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("could not close key file: %w", err)
	}
	return f.Name(), nil
}

func (s *CLISubmitter) execute(ctx context.Context, args ...string) ([]byte, error) {
	cmd := execCommand(ctx, s.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if stderr.Len() > 0 {
		logger.Log.Debug().Str("stderr", stderr.String()).Msg("aptos CLI stderr output")
	}

	if err != nil {
		return stdout.Bytes(), fmt.Errorf("aptos CLI failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// parseRunOutput reads the CLI's {"Result": {...}} or {"Error": "..."}
// envelope. The envelope wins over the exit status when both are present.
func parseRunOutput(output []byte, runErr error) (domain.TxOutcome, error) {
	if msg, err := jsonparser.GetString(output, "Error"); err == nil {
		return domain.TxOutcome{}, fmt.Errorf("aptos CLI error: %s", msg)
	}

	result, _, _, err := jsonparser.Get(output, "Result")
	if err != nil {
		if runErr != nil {
			return domain.TxOutcome{}, runErr
		}
		return domain.TxOutcome{}, fmt.Errorf("%w: no \"Result\" in aptos CLI output: %s", domain.ErrMalformedPayload, strings.TrimSpace(string(output)))
	}

	var out domain.TxOutcome
	if out.Hash, err = jsonparser.GetString(result, "transaction_hash"); err != nil {
		return domain.TxOutcome{}, fmt.Errorf("%w: no \"transaction_hash\" in aptos CLI result", domain.ErrMalformedPayload)
	}
	out.Success, _ = jsonparser.GetBoolean(result, "success")
	out.VMStatus, _ = jsonparser.GetString(result, "vm_status")
	if v, err := jsonparser.GetInt(result, "version"); err == nil && v >= 0 {
		out.Version = uint64(v)
	}
	if g, err := jsonparser.GetInt(result, "gas_used"); err == nil && g >= 0 {
		out.GasUsed = uint64(g)
	}

	if !out.Success {
		return out, fmt.Errorf("transaction %s failed: %s", out.Hash, out.VMStatus)
	}
	if runErr != nil {
		return out, errors.Join(errors.New("aptos CLI reported success but exited non-zero"), runErr)
	}
	return out, nil
}
