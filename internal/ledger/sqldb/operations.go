package sqldb

import (
	"errors"
	"fmt"
	"time"

	"github.com/Soar-Robotics/ClientLedger/internal/ledger"
	"github.com/Soar-Robotics/ClientLedger/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (d *DB) AddClient(name string, days uint32, seller string, money uint32, info string) error {
	if err := d.checkOpen(); err != nil {
		return err
	}

	c := ledger.NewClient(d.now(), name, days, seller, money, info)
	row := models.Client{
		Name:       c.Name,
		ExpireDate: ledger.FormatTime(c.ExpireTime),
		Info:       c.Info,
	}

	// A conflicting name leaves the row untouched instead of aborting the
	// transaction.
	result := d.tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if result.Error != nil {
		return ledger.IOError("insert client", result.Error)
	}
	if result.RowsAffected == 0 {
		return &ledger.AlreadyExistsError{Name: name}
	}

	return d.addPayment(name, c.Payments[0])
}

func (d *DB) RenewClient(name string, days uint32, seller string, money uint32) error {
	if err := d.checkOpen(); err != nil {
		return err
	}

	row, err := d.findClient(name)
	if err != nil {
		return err
	}
	expire, err := parseExpire(row)
	if err != nil {
		return err
	}

	now := ledger.Truncate(d.now())
	if err := d.setExpire(name, ledger.RenewedExpiry(now, expire, days)); err != nil {
		return err
	}

	return d.addPayment(name, ledger.Payment{Seller: seller, Money: money, Date: now})
}

func (d *DB) RenewAllClients(days uint32) error {
	if err := d.checkOpen(); err != nil {
		return err
	}

	var rows []models.Client
	if err := d.tx.Select("name", "expire_date").Order("name").Find(&rows).Error; err != nil {
		return ledger.IOError("select clients", err)
	}

	now := d.now()
	for i := range rows {
		expire, err := parseExpire(&rows[i])
		if err != nil {
			return err
		}
		if expire.Before(now) {
			continue
		}

		if err := d.setExpire(rows[i].Name, ledger.Truncate(ledger.AddDays(expire, days))); err != nil {
			return err
		}
	}

	return nil
}

func (d *DB) EditClient(name string, days uint32, seller string, money uint32, info string) error {
	if err := d.checkOpen(); err != nil {
		return err
	}

	row, err := d.findClient(name)
	if err != nil {
		return err
	}
	expire, err := parseExpire(row)
	if err != nil {
		return err
	}

	now := ledger.Truncate(d.now())
	if expire.Before(now) {
		return fmt.Errorf("cannot edit '%s': %w", name, ledger.ErrClientExpired)
	}

	result := d.tx.Model(&models.Client{}).Where("name = ?", name).Updates(map[string]interface{}{
		"expire_date": ledger.FormatTime(ledger.AddDays(now, days)),
		"info":        info,
	})
	if result.Error != nil {
		return ledger.IOError("update client", result.Error)
	}
	if result.RowsAffected == 0 {
		return &ledger.NotFoundError{Name: name}
	}

	var last models.Payment
	err = d.tx.Where("client_name = ?", name).Order("id DESC").Take(&last).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &ledger.InvariantError{Name: name, Detail: "client has no payments"}
	case err != nil:
		return ledger.IOError("select payment", err)
	}

	result = d.tx.Model(&last).Updates(map[string]interface{}{"seller": seller, "money": money})
	if result.Error != nil {
		return ledger.IOError("update payment", result.Error)
	}
	if result.RowsAffected == 0 {
		return &ledger.InvariantError{Name: name, Detail: "latest payment vanished during edit"}
	}

	return nil
}

func (d *DB) RemoveClient(name string) error {
	if err := d.checkOpen(); err != nil {
		return err
	}

	result := d.tx.Where("name = ?", name).Delete(&models.Client{})
	if result.Error != nil {
		return ledger.IOError("delete client", result.Error)
	}
	if result.RowsAffected == 0 {
		return &ledger.NotFoundError{Name: name}
	}

	result = d.tx.Where("client_name = ?", name).Delete(&models.Payment{})
	if result.Error != nil {
		return ledger.IOError("delete payments", result.Error)
	}
	if result.RowsAffected == 0 {
		return &ledger.InvariantError{Name: name, Detail: "removed client had no payments"}
	}

	return nil
}

func (d *DB) ListClients() ([]ledger.Client, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}

	payments, err := d.payments()
	if err != nil {
		return nil, err
	}

	var rows []models.Client
	if err := d.tx.Order("name").Find(&rows).Error; err != nil {
		return nil, ledger.IOError("select clients", err)
	}

	clients := make([]ledger.Client, 0, len(rows))
	for i := range rows {
		expire, err := parseExpire(&rows[i])
		if err != nil {
			return nil, err
		}

		ps, ok := payments[rows[i].Name]
		if !ok {
			return nil, &ledger.InvariantError{Name: rows[i].Name, Detail: "client has no payments"}
		}

		clients = append(clients, ledger.Client{
			Name:       rows[i].Name,
			ExpireTime: expire,
			Payments:   ps,
			Info:       rows[i].Info,
		})
	}

	return clients, nil
}

func (d *DB) RenameClient(oldName, newName string) error {
	if err := d.checkOpen(); err != nil {
		return err
	}

	found, err := d.exists(oldName)
	if err != nil {
		return err
	}
	if !found {
		return &ledger.NotFoundError{Name: oldName}
	}

	if oldName != newName {
		taken, err := d.exists(newName)
		if err != nil {
			return err
		}
		if taken {
			return &ledger.AlreadyExistsError{Name: newName}
		}
	}

	result := d.tx.Model(&models.Client{}).Where("name = ?", oldName).Update("name", newName)
	if result.Error != nil {
		return ledger.IOError("rename client", result.Error)
	}
	if result.RowsAffected == 0 {
		return &ledger.NotFoundError{Name: oldName}
	}

	result = d.tx.Model(&models.Payment{}).Where("client_name = ?", oldName).Update("client_name", newName)
	if result.Error != nil {
		return ledger.IOError("rename payments", result.Error)
	}
	if result.RowsAffected == 0 {
		return &ledger.InvariantError{Name: oldName, Detail: "renamed client had no payments"}
	}

	return nil
}

func (d *DB) SetClientInfo(target ledger.Target, info string) error {
	if err := d.checkOpen(); err != nil {
		return err
	}

	q := d.tx.Model(&models.Client{})
	switch t := target.(type) {
	case ledger.AllTarget:
		q = q.Session(&gorm.Session{AllowGlobalUpdate: true})
	case ledger.MatchInfoTarget:
		if t.Info == "" {
			// An unset info reads as "".
			q = q.Where("info = ? OR info IS NULL", t.Info)
		} else {
			q = q.Where("info = ?", t.Info)
		}
	case ledger.OnePersonTarget:
		q = q.Where("name = ?", t.Name)
	default:
		return fmt.Errorf("unsupported target %T", target)
	}

	result := q.Update("info", info)
	if result.Error != nil {
		return ledger.IOError("update info", result.Error)
	}

	if t, ok := target.(ledger.OnePersonTarget); ok && result.RowsAffected == 0 {
		return &ledger.NotFoundError{Name: t.Name}
	}

	return nil
}

func (d *DB) GetClientInfo(name string) (string, error) {
	if err := d.checkOpen(); err != nil {
		return "", err
	}

	row, err := d.findClient(name)
	if err != nil {
		return "", err
	}

	if row.Info == nil {
		return "", nil
	}
	return *row.Info, nil
}

func (d *DB) setExpire(name string, expire time.Time) error {
	result := d.tx.Model(&models.Client{}).Where("name = ?", name).Update("expire_date", ledger.FormatTime(expire))
	if result.Error != nil {
		return ledger.IOError("update expire_date", result.Error)
	}
	if result.RowsAffected == 0 {
		return &ledger.NotFoundError{Name: name}
	}
	return nil
}

// payments groups every payment row by client, oldest first.
func (d *DB) payments() (map[string][]ledger.Payment, error) {
	var rows []models.Payment
	if err := d.tx.Order("id").Find(&rows).Error; err != nil {
		return nil, ledger.IOError("select payments", err)
	}

	out := make(map[string][]ledger.Payment)
	for _, row := range rows {
		date, err := ledger.ParseTime(row.Date)
		if err != nil {
			return nil, ledger.FormatError("parse payment date of "+row.ClientName, err)
		}

		out[row.ClientName] = append(out[row.ClientName], ledger.Payment{
			Seller: row.Seller,
			Money:  row.Money,
			Date:   date,
		})
	}

	return out, nil
}

func parseExpire(row *models.Client) (time.Time, error) {
	t, err := ledger.ParseTime(row.ExpireDate)
	if err != nil {
		return time.Time{}, ledger.FormatError("parse expire_date of "+row.Name, err)
	}
	return t, nil
}
