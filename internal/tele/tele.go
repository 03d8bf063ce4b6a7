package tele

import (
	"context"
	"sync"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/juju/errors"
	"github.com/temoto/spq"
	"github.com/vendsim/vender/helpers"
	"github.com/vendsim/vender/log2"
	tele_api "github.com/vendsim/vender/tele"
	tele_config "github.com/vendsim/vender/tele/config"
)

const DefaultNetworkTimeout = 30 * time.Second

// Tele contract:
// - Init() fails only with invalid config, network issues ignored
// - Transaction/Error/Report calls block at most for queue write,
//   messages are delivered in background
// - Telemetry/Response messages delivered at least once
// - State messages may be lost
type tele struct { //nolint:maligned
	config    tele_config.Config
	log       *log2.Log
	transport Transporter
	q         *spq.Queue
	stopCh    chan struct{}
	doneCh    chan struct{}
	vmId      int32
	stat      tele_api.Stat
	retry     helpers.Backoff

	stateMu      sync.Mutex
	currentState tele_api.State
}

func New() tele_api.Teler { return &tele{} }

func NewWithTransporter(trans Transporter) tele_api.Teler { return &tele{transport: trans} }

func (self *tele) Init(ctx context.Context, log *log2.Log, teleConfig tele_config.Config) error {
	self.config = teleConfig
	self.log = log
	if self.config.LogDebug {
		self.log.SetLevel(log2.LDebug)
	}
	if !self.config.Enabled {
		return nil
	}

	self.vmId = int32(self.config.VmId)
	self.stopCh = make(chan struct{})
	self.doneCh = make(chan struct{})
	self.stat.Locked_Reset()
	self.retry = helpers.Backoff{Min: 100 * time.Millisecond, Max: helpers.IntSecondDefault(self.config.NetworkTimeoutSec, DefaultNetworkTimeout), K: 2}

	path := self.config.PersistPath
	if path == "" {
		path = spq.OnlyForTesting
		self.log.Infof("tele persist_path=empty, outbox is in memory")
	}
	var err error
	self.q, err = spq.Open(path)
	if err != nil {
		return errors.Annotatef(err, "tele queue path=%s", path)
	}

	// test code sets .transport
	if self.transport == nil { // production path
		self.transport = &transportMqtt{}
	}
	willPayload := []byte{byte(tele_api.State_Disconnected)}
	if err := self.transport.Init(ctx, log, teleConfig, self.onCommandMessage, willPayload); err != nil {
		self.q.Close()
		return errors.Annotate(err, "tele transport")
	}

	go self.qworker()
	self.State(tele_api.State_Boot)
	return nil
}

func (self *tele) Close() {
	if !self.config.Enabled {
		return
	}
	close(self.stopCh)
	self.q.Close()
	<-self.doneCh
	self.transport.Close()
}

// denote value type in persistent queue bytes form
const (
	qCommandResponse byte = 1
	qTelemetry       byte = 2
)

func (self *tele) qworker() {
	defer close(self.doneCh)
	for {
		box, err := self.q.Peek()
		switch err {
		case nil:
			// success path
			b := box.Bytes()
			var del bool
			del, err = self.qhandle(b)
			if err != nil {
				self.log.Errorf("tele qhandle b=%x err=%v", b, err)
			}
			if del {
				self.retry.Reset()
				err = self.q.Delete(box)
			} else {
				err = self.q.DeletePush(box)
				self.retryPause(self.retry.Failure())
			}
			if err != nil && err != spq.ErrClosed {
				self.log.Errorf("tele queue b=%x err=%v", b, err)
			}

		case spq.ErrClosed:
			select {
			case <-self.stopCh: // success path
			default:
				self.log.Errorf("CRITICAL tele spq closed unexpectedly")
			}
			return

		default:
			self.log.Errorf("CRITICAL tele spq err=%v", err)
			self.retryPause(self.retry.Failure())
		}
	}
}

func (self *tele) retryPause(d time.Duration) {
	self.log.Debugf("tele retry in %v", d)
	select {
	case <-time.After(d):
	case <-self.stopCh:
	}
}

func (self *tele) qhandle(b []byte) (bool, error) {
	if len(b) == 0 {
		self.log.Errorf("tele spq peek=empty")
		return true, nil
	}

	switch b[0] {
	case qCommandResponse:
		var r tele_api.Response
		if err := proto.Unmarshal(b[1:], &r); err != nil {
			return true, err
		}
		return self.qsendResponse(&r), nil

	case qTelemetry:
		var tm tele_api.Telemetry
		if err := proto.Unmarshal(b[1:], &tm); err != nil {
			return true, err
		}
		return self.qsendTelemetry(&tm), nil

	default:
		return true, errors.Errorf("unknown kind=%d", b[0])
	}
}

func (self *tele) qpushCommandResponse(c *tele_api.Command, r *tele_api.Response) error {
	if c.ReplyTopic == "" {
		return errors.Errorf("command id=%d reply_topic=empty", c.Id)
	}
	r.INTERNALTopic = c.ReplyTopic
	return self.qpushTagProto(qCommandResponse, r)
}

func (self *tele) qpushTelemetry(tm *tele_api.Telemetry) error {
	if tm.VmId == 0 {
		tm.VmId = self.vmId
	}
	if tm.Time == 0 {
		tm.Time = time.Now().UnixNano()
	}
	if tm.BuildVersion == "" {
		tm.BuildVersion = self.config.BuildVersion
	}
	self.stat.Lock()
	defer self.stat.Unlock()
	tm.Stat = &self.stat.Telemetry_Stat
	err := self.qpushTagProto(qTelemetry, tm)
	tm.Stat = nil
	self.stat.Locked_Reset()
	return err
}

// Single byte tag followed by protobuf message.
func (self *tele) qpushTagProto(tag byte, pb proto.Message) error {
	buf := proto.NewBuffer(make([]byte, 0, 1024))
	if err := buf.EncodeVarint(uint64(tag)); err != nil {
		return err
	}
	if err := buf.Marshal(pb); err != nil {
		return err
	}
	return self.q.Push(buf.Bytes())
}

func (self *tele) qsendResponse(r *tele_api.Response) bool {
	// do not serialize INTERNAL_topic field
	wireResponse := *r
	wireResponse.INTERNALTopic = ""
	payload, err := proto.Marshal(&wireResponse)
	if err != nil {
		self.log.Errorf("CRITICAL response Marshal r=%s err=%v", r.String(), err)
		return true // retry will not help
	}
	return self.transport.SendCommandResponse(r.INTERNALTopic, payload)
}

func (self *tele) qsendTelemetry(tm *tele_api.Telemetry) bool {
	payload, err := proto.Marshal(tm)
	if err != nil {
		self.log.Errorf("CRITICAL telemetry Marshal tm=%s err=%v", tm.String(), err)
		return true // retry will not help
	}
	return self.transport.SendTelemetry(payload)
}
