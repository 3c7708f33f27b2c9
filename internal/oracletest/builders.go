package oracletest

import "github.com/tzoracle/oracled/internal/core/op"

// SetAdmin builds a set_admin operation from the admin fixture account.
func SetAdmin(caller, newAdmin string) *op.SetAdmin {
	return &op.SetAdmin{
		BaseOp:   op.BaseOp{Source: caller},
		NewAdmin: newAdmin,
	}
}

// WhitelistUser builds a whitelist_user operation.
func WhitelistUser(caller, user string) *op.WhitelistUser {
	return &op.WhitelistUser{
		BaseOp: op.BaseOp{Source: caller},
		User:   user,
	}
}

// BlacklistUser builds a blacklist_user operation.
func BlacklistUser(caller, user string) *op.BlacklistUser {
	return &op.BlacklistUser{
		BaseOp: op.BaseOp{Source: caller},
		User:   user,
	}
}

// WhitelistPair builds a whitelist_pair operation.
func WhitelistPair(caller, pair string) *op.WhitelistPair {
	return &op.WhitelistPair{
		BaseOp: op.BaseOp{Source: caller},
		Pair:   pair,
	}
}

// BlacklistPair builds a blacklist_pair operation.
func BlacklistPair(caller, pair string) *op.BlacklistPair {
	return &op.BlacklistPair{
		BaseOp: op.BaseOp{Source: caller},
		Pair:   pair,
	}
}

// HarvestTez builds a harvest_xtz operation.
func HarvestTez(caller, destination string) *op.HarvestTez {
	return &op.HarvestTez{
		BaseOp:      op.BaseOp{Source: caller},
		Destination: destination,
	}
}

// GetPriceBuilder provides a fluent interface for building get_price
// operations.
type GetPriceBuilder struct {
	o op.GetPrice
}

// GetPrice starts a get_price builder targeting the fixture contract's
// receive entrypoint.
func GetPrice(caller, pair string) *GetPriceBuilder {
	b := &GetPriceBuilder{}
	b.o.Source = caller
	b.o.Pair = pair
	b.o.TargetAddress = Contract
	b.o.TargetEntrypoint = Receive
	return b
}

// Target overrides the destination contract and entrypoint.
func (b *GetPriceBuilder) Target(address, entrypoint string) *GetPriceBuilder {
	b.o.TargetAddress = address
	b.o.TargetEntrypoint = entrypoint
	return b
}

// Amount attaches value to the call.
func (b *GetPriceBuilder) Amount(v uint64) *GetPriceBuilder {
	b.o.Value = v
	return b
}

// Build constructs the get_price operation.
func (b *GetPriceBuilder) Build() *op.GetPrice {
	o := b.o
	return &o
}

// UpdateBuilder provides a fluent interface for building update operations.
type UpdateBuilder struct {
	o op.Update
}

// Update starts an update builder answering requestID with the fixture
// record's price fields and the fixture target. Tests override what they
// exercise.
func Update(caller, pair string, requestID uint64) *UpdateBuilder {
	b := &UpdateBuilder{}
	b.o.Source = caller
	b.o.Pair = pair
	b.o.RequestID = requestID
	b.o.Target = Contract + "%" + Receive
	b.o.OpenTime = FixtureOpenTime
	b.o.CloseTime = FixtureCloseTime
	b.o.LastPrice = FixtureLastPrice
	b.o.LowPrice = FixtureLowPrice
	b.o.HighPrice = FixtureHighPrice
	b.o.Volume = FixtureVolume
	b.o.QuoteVolume = FixtureQuoteVolume
	return b
}

// Target overrides the echoed "address%entrypoint" destination.
func (b *UpdateBuilder) Target(target string) *UpdateBuilder {
	b.o.Target = target
	return b
}

// Candle sets the candle window.
func (b *UpdateBuilder) Candle(openTime, closeTime int64) *UpdateBuilder {
	b.o.OpenTime = openTime
	b.o.CloseTime = closeTime
	return b
}

// Prices sets the price stats.
func (b *UpdateBuilder) Prices(last, low, high uint64) *UpdateBuilder {
	b.o.LastPrice = last
	b.o.LowPrice = low
	b.o.HighPrice = high
	return b
}

// Volumes sets the traded volumes.
func (b *UpdateBuilder) Volumes(volume, quoteVolume uint64) *UpdateBuilder {
	b.o.Volume = volume
	b.o.QuoteVolume = quoteVolume
	return b
}

// Amount attaches value to the call.
func (b *UpdateBuilder) Amount(v uint64) *UpdateBuilder {
	b.o.Value = v
	return b
}

// Build constructs the update operation.
func (b *UpdateBuilder) Build() *op.Update {
	o := b.o
	return &o
}
