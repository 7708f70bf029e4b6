package config

import (
	"embeddingsqna/global"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

func initRabbit() {
	url := AppConfig.RabbitMQ.Url
	if url == "" {
		global.Logger.Info("rabbitmq url empty, skipping rabbit init")
		return
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		global.Logger.Fatal("failed to connect to RabbitMQ", zap.Error(err))
	}

	ch, err := conn.Channel()
	if err != nil {
		global.Logger.Fatal("failed to open RabbitMQ channel", zap.Error(err))
	}

	qname := AppConfig.RabbitMQ.Queue
	if qname == "" {
		qname = "qna.answered"
		AppConfig.RabbitMQ.Queue = qname
	}
	if _, err := ch.QueueDeclare(qname, true, false, false, false, nil); err != nil {
		global.Logger.Fatal("failed to declare RabbitMQ queue", zap.Error(err))
	}

	global.RabbitConn = conn
	global.RabbitChannel = ch
	global.Logger.Info("RabbitMQ initialized", zap.String("queue", qname))
}
