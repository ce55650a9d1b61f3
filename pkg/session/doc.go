/*
Package session hosts named machines on behalf of servers and other multi-client hosts.

A Machine is single-threaded; the Manager serializes every operation on a session
(with an optional distributed lock across replicas) and persists a Snapshot after each
mutation so a session survives restarts and can move between processes.
*/
package session
