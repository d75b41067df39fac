// Package messaging provides a broker-agnostic API for publishing messages.
//
// Business code depends on the Publisher interface only, so the broker
// (Kafka, NATS, NSQ, Google Pub/Sub or none at all) is a deployment choice
// made through NewFromDriver.
package messaging
