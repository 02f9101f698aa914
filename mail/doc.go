// Package mail implements in-process package routing between components.
//
// Every component owns a Mailbox. Sending a Package queues it in the
// sender's outbound Pile for that recipient. A Manager (the router)
// periodically collects outbound queues and delivers them into the
// recipients' inbound Piles, preserving FIFO order per sender and recipient
// pair. Each Package moves through a one-way status machine:
//
//	created -> outbound -> in_transit -> inbound -> delivered
//
// so it can sit in at most one queue at any time. This is not a message
// broker: there is no persistence, retry or network transport.
package mail
