package machine

import (
	"time"

	tele_api "github.com/vendsim/vender/tele"
)

func (self *Context) TeleInventory() *tele_api.Telemetry_Inventory {
	pb := &tele_api.Telemetry_Inventory{
		Cash:  make(map[uint32]uint32, len(self.CashInventory)),
		Stock: make(map[string]uint32, len(self.Catalog)),
	}
	self.CashInventory.ToMapUint32(pb.Cash)
	for _, d := range self.Catalog {
		pb.Stock[d.Id.String()] = d.Stock
	}
	return pb
}

func (self *Context) TeleState() tele_api.State {
	if self.State == StateIdle {
		return tele_api.State_Nominal
	}
	return tele_api.State_Client
}

func (self *Transaction) Tele() *tele_api.Telemetry_Transaction {
	pb := &tele_api.Telemetry_Transaction{
		TxId:         self.Id,
		Method:       self.Method.String(),
		Inserted:     uint64(self.Inserted.Total()),
		Change:       uint64(self.Outcome.Change.Total()),
		Refund:       uint64(self.Outcome.Refund.Total()),
		Outcome:      self.Outcome.Kind.String(),
		DurationMs:   uint32(self.Duration / time.Millisecond),
		InsertedCash: make(map[uint32]uint32),
		ChangeCash:   make(map[uint32]uint32),
	}
	if self.Drink.Valid() {
		pb.Drink = self.Drink.String()
		pb.Price = uint64(self.Price)
	}
	self.Inserted.ToMapUint32(pb.InsertedCash)
	self.Outcome.Change.ToMapUint32(pb.ChangeCash)
	return pb
}
