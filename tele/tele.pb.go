package tele

// Messages of tele.proto in protoc-gen-go v1.3 layout, regenerate with go generate.
// TestProtoDrift keeps struct tags in line with tele.proto.

import (
	"github.com/golang/protobuf/proto"
)

type State int32

const (
	State_Invalid      State = 0
	State_Boot         State = 1
	State_Nominal      State = 2
	State_Client       State = 3
	State_Disconnected State = 4
)

var State_name = map[int32]string{
	0: "Invalid",
	1: "Boot",
	2: "Nominal",
	3: "Client",
	4: "Disconnected",
}

var State_value = map[string]int32{
	"Invalid":      0,
	"Boot":         1,
	"Nominal":      2,
	"Client":       3,
	"Disconnected": 4,
}

func (x State) String() string { return proto.EnumName(State_name, int32(x)) }

type Telemetry struct {
	VmId                 int32                  `protobuf:"varint,1,opt,name=vm_id,json=vmId,proto3" json:"vm_id,omitempty"`
	Time                 int64                  `protobuf:"varint,2,opt,name=time,proto3" json:"time,omitempty"`
	Error                *Telemetry_Error       `protobuf:"bytes,3,opt,name=error,proto3" json:"error,omitempty"`
	Transaction          *Telemetry_Transaction `protobuf:"bytes,4,opt,name=transaction,proto3" json:"transaction,omitempty"`
	Inventory            *Telemetry_Inventory   `protobuf:"bytes,5,opt,name=inventory,proto3" json:"inventory,omitempty"`
	Stat                 *Telemetry_Stat        `protobuf:"bytes,6,opt,name=stat,proto3" json:"stat,omitempty"`
	AtService            bool                   `protobuf:"varint,7,opt,name=at_service,json=atService,proto3" json:"at_service,omitempty"`
	BuildVersion         string                 `protobuf:"bytes,8,opt,name=build_version,json=buildVersion,proto3" json:"build_version,omitempty"`
	XXX_NoUnkeyedLiteral struct{}               `json:"-"`
	XXX_unrecognized     []byte                 `json:"-"`
	XXX_sizecache        int32                  `json:"-"`
}

func (m *Telemetry) Reset()         { *m = Telemetry{} }
func (m *Telemetry) String() string { return proto.CompactTextString(m) }
func (*Telemetry) ProtoMessage()    {}

type Telemetry_Error struct {
	Message              string   `protobuf:"bytes,1,opt,name=message,proto3" json:"message,omitempty"`
	Count                uint32   `protobuf:"varint,2,opt,name=count,proto3" json:"count,omitempty"`
	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *Telemetry_Error) Reset()         { *m = Telemetry_Error{} }
func (m *Telemetry_Error) String() string { return proto.CompactTextString(m) }
func (*Telemetry_Error) ProtoMessage()    {}

type Telemetry_Transaction struct {
	TxId                 string            `protobuf:"bytes,1,opt,name=tx_id,json=txId,proto3" json:"tx_id,omitempty"`
	Drink                string            `protobuf:"bytes,2,opt,name=drink,proto3" json:"drink,omitempty"`
	Price                uint64            `protobuf:"varint,3,opt,name=price,proto3" json:"price,omitempty"`
	Method               string            `protobuf:"bytes,4,opt,name=method,proto3" json:"method,omitempty"`
	Inserted             uint64            `protobuf:"varint,5,opt,name=inserted,proto3" json:"inserted,omitempty"`
	Change               uint64            `protobuf:"varint,6,opt,name=change,proto3" json:"change,omitempty"`
	Refund               uint64            `protobuf:"varint,7,opt,name=refund,proto3" json:"refund,omitempty"`
	Outcome              string            `protobuf:"bytes,8,opt,name=outcome,proto3" json:"outcome,omitempty"`
	DurationMs           uint32            `protobuf:"varint,9,opt,name=duration_ms,json=durationMs,proto3" json:"duration_ms,omitempty"`
	InsertedCash         map[uint32]uint32 `protobuf:"bytes,10,rep,name=inserted_cash,json=insertedCash,proto3" json:"inserted_cash,omitempty" protobuf_key:"varint,1,opt,name=key,proto3" protobuf_val:"varint,2,opt,name=value,proto3"`
	ChangeCash           map[uint32]uint32 `protobuf:"bytes,11,rep,name=change_cash,json=changeCash,proto3" json:"change_cash,omitempty" protobuf_key:"varint,1,opt,name=key,proto3" protobuf_val:"varint,2,opt,name=value,proto3"`
	XXX_NoUnkeyedLiteral struct{}          `json:"-"`
	XXX_unrecognized     []byte            `json:"-"`
	XXX_sizecache        int32             `json:"-"`
}

func (m *Telemetry_Transaction) Reset()         { *m = Telemetry_Transaction{} }
func (m *Telemetry_Transaction) String() string { return proto.CompactTextString(m) }
func (*Telemetry_Transaction) ProtoMessage()    {}

type Telemetry_Inventory struct {
	Cash                 map[uint32]uint32 `protobuf:"bytes,1,rep,name=cash,proto3" json:"cash,omitempty" protobuf_key:"varint,1,opt,name=key,proto3" protobuf_val:"varint,2,opt,name=value,proto3"`
	Stock                map[string]uint32 `protobuf:"bytes,2,rep,name=stock,proto3" json:"stock,omitempty" protobuf_key:"bytes,1,opt,name=key,proto3" protobuf_val:"varint,2,opt,name=value,proto3"`
	XXX_NoUnkeyedLiteral struct{}          `json:"-"`
	XXX_unrecognized     []byte            `json:"-"`
	XXX_sizecache        int32             `json:"-"`
}

func (m *Telemetry_Inventory) Reset()         { *m = Telemetry_Inventory{} }
func (m *Telemetry_Inventory) String() string { return proto.CompactTextString(m) }
func (*Telemetry_Inventory) ProtoMessage()    {}

type Telemetry_Stat struct {
	Transactions         uint32   `protobuf:"varint,1,opt,name=transactions,proto3" json:"transactions,omitempty"`
	Refunds              uint32   `protobuf:"varint,2,opt,name=refunds,proto3" json:"refunds,omitempty"`
	ChangeFailures       uint32   `protobuf:"varint,3,opt,name=change_failures,json=changeFailures,proto3" json:"change_failures,omitempty"`
	OutOfStock           uint32   `protobuf:"varint,4,opt,name=out_of_stock,json=outOfStock,proto3" json:"out_of_stock,omitempty"`
	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *Telemetry_Stat) Reset()         { *m = Telemetry_Stat{} }
func (m *Telemetry_Stat) String() string { return proto.CompactTextString(m) }
func (*Telemetry_Stat) ProtoMessage()    {}

type Command struct {
	Id                   uint32             `protobuf:"varint,1,opt,name=id,proto3" json:"id,omitempty"`
	ReplyTopic           string             `protobuf:"bytes,2,opt,name=reply_topic,json=replyTopic,proto3" json:"reply_topic,omitempty"`
	Report               *Command_ArgReport `protobuf:"bytes,3,opt,name=report,proto3" json:"report,omitempty"`
	Exec                 *Command_ArgExec   `protobuf:"bytes,4,opt,name=exec,proto3" json:"exec,omitempty"`
	XXX_NoUnkeyedLiteral struct{}           `json:"-"`
	XXX_unrecognized     []byte             `json:"-"`
	XXX_sizecache        int32              `json:"-"`
}

func (m *Command) Reset()         { *m = Command{} }
func (m *Command) String() string { return proto.CompactTextString(m) }
func (*Command) ProtoMessage()    {}

type Command_ArgReport struct {
	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *Command_ArgReport) Reset()         { *m = Command_ArgReport{} }
func (m *Command_ArgReport) String() string { return proto.CompactTextString(m) }
func (*Command_ArgReport) ProtoMessage()    {}

type Command_ArgExec struct {
	Scenario             string   `protobuf:"bytes,1,opt,name=scenario,proto3" json:"scenario,omitempty"`
	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *Command_ArgExec) Reset()         { *m = Command_ArgExec{} }
func (m *Command_ArgExec) String() string { return proto.CompactTextString(m) }
func (*Command_ArgExec) ProtoMessage()    {}

type Response struct {
	CommandId            uint32   `protobuf:"varint,1,opt,name=command_id,json=commandId,proto3" json:"command_id,omitempty"`
	Error                string   `protobuf:"bytes,2,opt,name=error,proto3" json:"error,omitempty"`
	INTERNALTopic        string   `protobuf:"bytes,2048,opt,name=INTERNAL_topic,json=INTERNALTopic,proto3" json:"INTERNAL_topic,omitempty"`
	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *Response) Reset()         { *m = Response{} }
func (m *Response) String() string { return proto.CompactTextString(m) }
func (*Response) ProtoMessage()    {}

func init() {
	proto.RegisterEnum("tele.State", State_name, State_value)
	proto.RegisterType((*Telemetry)(nil), "tele.Telemetry")
	proto.RegisterType((*Telemetry_Error)(nil), "tele.Telemetry.Error")
	proto.RegisterType((*Telemetry_Transaction)(nil), "tele.Telemetry.Transaction")
	proto.RegisterType((*Telemetry_Inventory)(nil), "tele.Telemetry.Inventory")
	proto.RegisterType((*Telemetry_Stat)(nil), "tele.Telemetry.Stat")
	proto.RegisterType((*Command)(nil), "tele.Command")
	proto.RegisterType((*Command_ArgReport)(nil), "tele.Command.ArgReport")
	proto.RegisterType((*Command_ArgExec)(nil), "tele.Command.ArgExec")
	proto.RegisterType((*Response)(nil), "tele.Response")
}
