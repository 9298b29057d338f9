package jsondb

import (
	"fmt"

	"github.com/Soar-Robotics/ClientLedger/internal/ledger"
)

func (d *DB) AddClient(name string, days uint32, seller string, money uint32, info string) error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	if d.index(name) >= 0 {
		return &ledger.AlreadyExistsError{Name: name}
	}

	d.clients = append(d.clients, ledger.NewClient(d.now(), name, days, seller, money, info))
	return d.persist()
}

func (d *DB) RenewClient(name string, days uint32, seller string, money uint32) error {
	if err := d.checkOpen(); err != nil {
		return err
	}

	c, err := d.find(name)
	if err != nil {
		return err
	}

	now := ledger.Truncate(d.now())
	c.ExpireTime = ledger.RenewedExpiry(now, c.ExpireTime, days)
	c.Payments = append(c.Payments, ledger.Payment{Seller: seller, Money: money, Date: now})
	return d.persist()
}

func (d *DB) RenewAllClients(days uint32) error {
	if err := d.checkOpen(); err != nil {
		return err
	}

	now := d.now()
	for i := range d.clients {
		if d.clients[i].IsExpired(now) {
			continue
		}
		d.clients[i].ExpireTime = ledger.Truncate(ledger.AddDays(d.clients[i].ExpireTime, days))
	}

	return d.persist()
}

func (d *DB) EditClient(name string, days uint32, seller string, money uint32, info string) error {
	if err := d.checkOpen(); err != nil {
		return err
	}

	c, err := d.find(name)
	if err != nil {
		return err
	}

	now := ledger.Truncate(d.now())
	if c.IsExpired(now) {
		return fmt.Errorf("cannot edit '%s': %w", name, ledger.ErrClientExpired)
	}
	if len(c.Payments) == 0 {
		return &ledger.InvariantError{Name: name, Detail: "client has no payments"}
	}

	c.ExpireTime = ledger.AddDays(now, days)
	last := &c.Payments[len(c.Payments)-1]
	last.Seller = seller
	last.Money = money
	c.Info = &info
	return d.persist()
}

func (d *DB) RemoveClient(name string) error {
	if err := d.checkOpen(); err != nil {
		return err
	}

	i := d.index(name)
	if i < 0 {
		return &ledger.NotFoundError{Name: name}
	}

	d.clients = append(d.clients[:i], d.clients[i+1:]...)
	return d.persist()
}

func (d *DB) ListClients() ([]ledger.Client, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	return d.snapshot(), nil
}

func (d *DB) RenameClient(oldName, newName string) error {
	if err := d.checkOpen(); err != nil {
		return err
	}

	c, err := d.find(oldName)
	if err != nil {
		return err
	}
	if oldName != newName && d.index(newName) >= 0 {
		return &ledger.AlreadyExistsError{Name: newName}
	}

	// Payments are embedded, so they follow the client.
	c.Name = newName
	return d.persist()
}

func (d *DB) SetClientInfo(target ledger.Target, info string) error {
	if err := d.checkOpen(); err != nil {
		return err
	}

	if t, ok := target.(ledger.OnePersonTarget); ok && d.index(t.Name) < 0 {
		return &ledger.NotFoundError{Name: t.Name}
	}

	for i := range d.clients {
		c := &d.clients[i]
		if !target.Matches(c.Name, c.InfoOrEmpty()) {
			continue
		}
		v := info
		c.Info = &v
	}

	return d.persist()
}

func (d *DB) GetClientInfo(name string) (string, error) {
	if err := d.checkOpen(); err != nil {
		return "", err
	}

	c, err := d.find(name)
	if err != nil {
		return "", err
	}
	return c.InfoOrEmpty(), nil
}
