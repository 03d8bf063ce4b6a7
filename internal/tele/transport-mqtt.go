package tele

import (
	"context"
	"fmt"
	"net/url"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/juju/errors"
	"github.com/vendsim/vender/helpers"
	"github.com/vendsim/vender/log2"
	tele_config "github.com/vendsim/vender/tele/config"
)

func TopicCommand(vmid int32) string                 { return fmt.Sprintf("vm%d/r/c", vmid) }
func TopicResponse(vmid int32, suffix string) string { return fmt.Sprintf("vm%d/%s", vmid, suffix) }
func TopicState(vmid int32) string                   { return fmt.Sprintf("vm%d/w/1s", vmid) }
func TopicTelemetry(vmid int32) string               { return fmt.Sprintf("vm%d/w/1t", vmid) }

// mqttLogger adapts log2 to paho logger interface.
type mqttLogger struct {
	log   *log2.Log
	level log2.Level
}

func (self mqttLogger) Println(v ...interface{}) { self.log.Log(self.level, "mqtt: "+fmt.Sprint(v...)) }
func (self mqttLogger) Printf(format string, v ...interface{}) {
	self.log.Logf(self.level, "mqtt: "+format, v...)
}

type transportMqtt struct {
	log       *log2.Log
	onCommand func([]byte) bool
	m         mqtt.Client
	timeout   time.Duration
	vmid      int32

	topicConnect   string
	topicState     string
	topicTelemetry string
	topicCommand   string
	willPayload    []byte
}

func (self *transportMqtt) Init(ctx context.Context, log *log2.Log, teleConfig tele_config.Config, onCommand CommandCallback, willPayload []byte) error {
	self.log = log
	mqtt.ERROR = mqttLogger{log, log2.LError}
	mqtt.CRITICAL = mqttLogger{log, log2.LError}
	mqtt.WARN = mqttLogger{log, log2.LInfo}
	if teleConfig.MqttLogDebug {
		mqtt.DEBUG = mqttLogger{log, log2.LDebug}
	}

	if _, err := url.ParseRequestURI(teleConfig.MqttBroker); err != nil {
		return errors.Annotatef(err, "tele mqtt_broker=%s", teleConfig.MqttBroker)
	}

	self.vmid = int32(teleConfig.VmId)
	mqttClientId := fmt.Sprintf("vm%d", self.vmid)
	self.topicConnect = fmt.Sprintf("vm%d/c", self.vmid)
	self.topicState = TopicState(self.vmid)
	self.topicTelemetry = TopicTelemetry(self.vmid)
	self.topicCommand = TopicCommand(self.vmid)
	self.willPayload = willPayload
	self.onCommand = func(payload []byte) bool { return onCommand(ctx, payload) }
	self.timeout = helpers.IntSecondDefault(teleConfig.NetworkTimeoutSec, DefaultNetworkTimeout)
	keepAlive := helpers.IntSecondDefault(teleConfig.KeepaliveSec, 60*time.Second)

	mopt := mqtt.NewClientOptions().
		AddBroker(teleConfig.MqttBroker).
		SetBinaryWill(self.topicConnect, willPayload, 1, true).
		SetCleanSession(false).
		SetClientID(mqttClientId).
		SetUsername(mqttClientId).
		SetPassword(teleConfig.MqttPassword).
		SetDefaultPublishHandler(self.messageHandler).
		SetKeepAlive(keepAlive).
		SetPingTimeout(self.timeout).
		SetConnectTimeout(self.timeout).
		SetOrderMatters(false).
		SetResumeSubs(true).
		SetStore(mqtt.NewMemoryStore()).
		SetConnectRetry(true).
		SetConnectRetryInterval(keepAlive / 2).
		SetAutoReconnect(true).
		SetOnConnectHandler(self.onConnectHandler).
		SetConnectionLostHandler(self.connectLostHandler)
	self.m = mqtt.NewClient(mopt)
	// network errors are not fatal, client keeps retrying in background
	if token := self.m.Connect(); token.WaitTimeout(self.timeout) && token.Error() != nil {
		self.log.Errorf("tele mqtt connect err=%v", token.Error())
	}
	return nil
}

func (self *transportMqtt) Close() {
	if token := self.m.Unsubscribe(self.topicCommand); token.WaitTimeout(self.timeout) && token.Error() != nil {
		self.log.Errorf("tele mqtt unsubscribe err=%v", token.Error())
	}
	self.m.Disconnect(uint(self.timeout / time.Millisecond))
}

func (self *transportMqtt) publish(topic string, retained bool, payload []byte) bool {
	token := self.m.Publish(topic, 1, retained, payload)
	if !token.WaitTimeout(self.timeout) {
		self.log.Debugf("tele mqtt publish topic=%s timeout", topic)
		return false
	}
	if err := token.Error(); err != nil {
		self.log.Errorf("tele mqtt publish topic=%s err=%v", topic, err)
		return false
	}
	return true
}

func (self *transportMqtt) SendState(payload []byte) bool {
	self.log.Debugf("tele mqtt state=%x", payload)
	return self.publish(self.topicState, true, payload)
}

func (self *transportMqtt) SendTelemetry(payload []byte) bool {
	return self.publish(self.topicTelemetry, false, payload)
}

func (self *transportMqtt) SendCommandResponse(topicSuffix string, payload []byte) bool {
	topic := TopicResponse(self.vmid, topicSuffix)
	self.log.Debugf("tele mqtt command response topic=%s", topic)
	return self.publish(topic, false, payload)
}

func (self *transportMqtt) messageHandler(c mqtt.Client, msg mqtt.Message) {
	payload := msg.Payload()
	self.log.Debugf("tele mqtt message topic=%s payload=%x", msg.Topic(), payload)
	self.onCommand(payload)
}

func (self *transportMqtt) connectLostHandler(c mqtt.Client, err error) {
	self.log.Infof("tele mqtt disconnected err=%v", err)
}

func (self *transportMqtt) onConnectHandler(c mqtt.Client) {
	self.log.Infof("tele mqtt connected")
	if token := c.Subscribe(self.topicCommand, 1, nil); token.WaitTimeout(self.timeout) && token.Error() != nil {
		self.log.Errorf("tele mqtt subscribe topic=%s err=%v", self.topicCommand, token.Error())
		return
	}
	c.Publish(self.topicConnect, 1, true, []byte{byte(1)})
}
