package signaling

import "sync"

// PeerInfo is what the relay remembers about a connection.
type PeerInfo struct {
	Email string
	// Remote is the connection this one was last paired with.
	Remote string
}

// Directory stores PeerInfo by connection id. Implementations must be safe
// for concurrent use.
type Directory interface {
	Set(connID, email string)
	Get(connID string) (PeerInfo, bool)
	Link(connID, remoteID string)
	Delete(connID string)
}

// MemoryDirectory is a Directory backed by a map.
type MemoryDirectory struct {
	mu    sync.RWMutex
	peers map[string]PeerInfo
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{peers: make(map[string]PeerInfo)}
}

// Set records the email of connID, keeping any existing link.
func (d *MemoryDirectory) Set(connID, email string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	info := d.peers[connID]
	info.Email = email
	d.peers[connID] = info
}

func (d *MemoryDirectory) Get(connID string) (PeerInfo, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	info, ok := d.peers[connID]
	return info, ok
}

func (d *MemoryDirectory) Link(connID, remoteID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	info := d.peers[connID]
	info.Remote = remoteID
	d.peers[connID] = info
}

func (d *MemoryDirectory) Delete(connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.peers, connID)
}

// Len returns the number of known connections.
func (d *MemoryDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.peers)
}
