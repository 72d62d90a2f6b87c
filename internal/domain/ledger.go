package domain

import "fmt"

// ModuleCoordinates locate the jukebox module on chain. Address is expected
// in the long 0x-prefixed form.
type ModuleCoordinates struct {
	Address string
	Module  string
	Struct  string
}

// ResourceType renders the Move struct tag, e.g. 0x1::jukebox::Jukebox.
func (m ModuleCoordinates) ResourceType() string {
	return fmt.Sprintf("%s::%s::%s", m.Address, m.Module, m.Struct)
}

func (m ModuleCoordinates) FunctionID(function string) string {
	return fmt.Sprintf("%s::%s::%s", m.Address, m.Module, function)
}

type EntryFunction struct {
	Module       ModuleCoordinates
	Function     string
	Args         []string
	MaxGas       uint64
	GasUnitPrice uint64
}

// TxOutcome is what the ledger reported for a committed transaction.
type TxOutcome struct {
	Hash     string `json:"transaction_hash"`
	Version  uint64 `json:"version"`
	GasUsed  uint64 `json:"gas_used"`
	Success  bool   `json:"success"`
	VMStatus string `json:"vm_status"`
}

// Report summarises one driver run.
type Report struct {
	TrackID             string     `json:"track_id"`
	StartMs             uint64     `json:"start_ms"`
	DurationMs          uint64     `json:"duration_ms"`
	NowMs               uint64     `json:"now_ms"`
	RemainingMs         int64      `json:"remaining_ms"`
	ShouldResolve       bool       `json:"should_resolve"`
	Triggered           bool       `json:"triggered"`
	CredentialRefreshed bool       `json:"credential_refreshed"`
	DurationCached      bool       `json:"duration_cached"`
	Tx                  *TxOutcome `json:"tx,omitempty"`
}
