package models

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"time"
)

// NewID returns a 24 hex character identifier: a 4 byte timestamp followed by
// 8 random bytes, so ids sort roughly by creation time.
func NewID() string {
	var buf [12]byte
	binary.BigEndian.PutUint32(buf[:4], uint32(time.Now().Unix()))
	if _, err := rand.Read(buf[4:]); err != nil {
		binary.BigEndian.PutUint64(buf[4:], uint64(time.Now().UnixNano()))
	}
	return hex.EncodeToString(buf[:])
}
