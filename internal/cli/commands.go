package cli

import (
	"errors"
	"fmt"

	"github.com/Soar-Robotics/ClientLedger/internal/ledger"
	"github.com/Soar-Robotics/ClientLedger/internal/postscript"
	"github.com/Soar-Robotics/ClientLedger/internal/report"
)

const (
	defaultDays  = 30
	defaultMoney = 60
)

func setupAdd(fs *flagSet) func(e *env) ([]Hook, error) {
	name := fs.String("name", "", "client name")
	days := fs.uint32("days", defaultDays, "subscription length in days")
	seller := fs.String("seller", "", "who got the money")
	money := fs.uint32("money", defaultMoney, "amount paid")
	info := fs.String("info", "", "extra info")

	return func(e *env) ([]Hook, error) {
		if err := fs.require("name", "seller"); err != nil {
			return nil, err
		}
		if err := e.validate.Client(*name, *seller, *info); err != nil {
			return nil, err
		}
		if err := e.validate.Days(*days); err != nil {
			return nil, err
		}

		if err := e.db.AddClient(*name, *days, *seller, *money, *info); err != nil {
			return nil, err
		}
		return []Hook{{Name: postscript.Add, Args: []string{*name}}}, nil
	}
}

func setupRenew(fs *flagSet) func(e *env) ([]Hook, error) {
	name := fs.String("name", "", "client name")
	days := fs.uint32("days", defaultDays, "days to add")
	seller := fs.String("seller", "", "who got the money")
	money := fs.uint32("money", defaultMoney, "amount paid")
	info := fs.String("info", "", "new extra info, the current one is kept when empty")

	return func(e *env) ([]Hook, error) {
		if err := fs.require("name", "seller"); err != nil {
			return nil, err
		}

		newInfo := *info
		if newInfo == "" {
			current, err := e.db.GetClientInfo(*name)
			if err != nil {
				return nil, err
			}
			newInfo = current
		}
		if err := e.validate.Client(*name, *seller, newInfo); err != nil {
			return nil, err
		}
		if err := e.validate.Days(*days); err != nil {
			return nil, err
		}

		if err := e.db.RenewClient(*name, *days, *seller, *money); err != nil {
			return nil, err
		}
		if err := e.db.SetClientInfo(ledger.OnePerson(*name), newInfo); err != nil {
			return nil, err
		}
		return []Hook{{Name: postscript.Renew, Args: []string{*name}}}, nil
	}
}

func setupRenewAll(fs *flagSet) func(e *env) ([]Hook, error) {
	days := fs.uint32("days", 0, "days to add to every active client")

	return func(e *env) ([]Hook, error) {
		if err := fs.require("days"); err != nil {
			return nil, err
		}
		if err := e.validate.Days(*days); err != nil {
			return nil, err
		}

		fmt.Fprintln(e.stdout, "you are renewing all clients that are not expired!")
		return nil, e.db.RenewAllClients(*days)
	}
}

func setupEdit(fs *flagSet) func(e *env) ([]Hook, error) {
	name := fs.String("name", "", "client name")
	days := fs.uint32("days", 0, "new number of days left, defaults to the current one")
	seller := fs.String("seller", "", "seller of the latest payment, defaults to the current one")
	money := fs.uint32("money", 0, "amount of the latest payment, defaults to the current one")
	info := fs.String("info", "", "extra info, defaults to the current one")

	return func(e *env) ([]Hook, error) {
		if err := fs.require("name"); err != nil {
			return nil, err
		}

		client, err := findClient(e.db, *name)
		if err != nil {
			return nil, err
		}
		now := e.now()
		if client.IsExpired(now) {
			return nil, fmt.Errorf("cannot edit '%s': %w", client.Name, ledger.ErrClientExpired)
		}

		last, ok := client.LastPayment()
		if !ok {
			return nil, &ledger.InvariantError{Name: client.Name, Detail: "client has no payments"}
		}
		if !fs.isSet("days") {
			*days = uint32(ledger.DaysLeft(now, client.ExpireTime))
		}
		if !fs.isSet("seller") {
			*seller = last.Seller
		}
		if !fs.isSet("money") {
			*money = last.Money
		}
		if !fs.isSet("info") {
			*info = client.InfoOrEmpty()
		}

		if err := e.validate.Seller(*seller); err != nil {
			return nil, err
		}
		if err := e.validate.Info(*info); err != nil {
			return nil, err
		}
		if err := e.validate.Days(*days); err != nil {
			return nil, err
		}
		return nil, e.db.EditClient(*name, *days, *seller, *money, *info)
	}
}

func setupRemove(fs *flagSet) func(e *env) ([]Hook, error) {
	name := fs.String("name", "", "client name")

	return func(e *env) ([]Hook, error) {
		if err := fs.require("name"); err != nil {
			return nil, err
		}
		if err := e.validate.Name(*name); err != nil {
			return nil, err
		}

		if err := e.db.RemoveClient(*name); err != nil {
			return nil, err
		}
		return []Hook{{Name: postscript.Delete, Args: []string{*name}}}, nil
	}
}

func setupList(fs *flagSet) func(e *env) ([]Hook, error) {
	trim := fs.Bool("trim-whitespace", false, "do not pad columns")
	verbose := fs.Bool("verbose", false, "show exact expiry times")

	return func(e *env) ([]Hook, error) {
		clients, err := e.db.ListClients()
		if err != nil {
			return nil, err
		}
		return nil, report.Clients(e.stdout, clients, e.now(), report.Options{TrimWhitespace: *trim, Verbose: *verbose})
	}
}

func setupRename(fs *flagSet) func(e *env) ([]Hook, error) {
	oldName := fs.String("old-name", "", "current client name")
	newName := fs.String("new-name", "", "new client name")

	return func(e *env) ([]Hook, error) {
		if err := fs.require("old-name", "new-name"); err != nil {
			return nil, err
		}
		if err := e.validate.Name(*newName); err != nil {
			return nil, err
		}

		if err := e.db.RenameClient(*oldName, *newName); err != nil {
			return nil, err
		}
		return []Hook{{Name: postscript.Rename, Args: []string{*oldName, *newName}}}, nil
	}
}

func setupSetInfo(fs *flagSet) func(e *env) ([]Hook, error) {
	all := fs.Bool("all", false, "set info of every client")
	matchInfo := fs.String("match-info", "", "set info of clients whose info is exactly this")
	name := fs.String("name", "", "set info of this client")
	info := fs.String("info", "", "new info")

	fs.check(func() error {
		selectors := 0
		if *all {
			selectors++
		}
		for _, flagName := range []string{"match-info", "name"} {
			if fs.isSet(flagName) {
				selectors++
			}
		}
		switch {
		case selectors > 1:
			return errors.New("--match-info and --all and --name conflicts with each other")
		case selectors == 0:
			return errors.New("one of --all, --match-info or --name is required")
		}
		return fs.require("info")
	})

	return func(e *env) ([]Hook, error) {
		var target ledger.Target
		switch {
		case *all:
			target = ledger.All()
		case fs.isSet("match-info"):
			target = ledger.MatchInfo(*matchInfo)
		default:
			target = ledger.OnePerson(*name)
		}

		if err := e.validate.Info(*info); err != nil {
			return nil, err
		}
		return nil, e.db.SetClientInfo(target, *info)
	}
}

func setupCleanup(fs *flagSet) func(e *env) ([]Hook, error) {
	return func(e *env) ([]Hook, error) {
		removed, err := ledger.Cleanup(e.db, e.now(), e.cfg.Grace())
		if err != nil {
			return nil, err
		}

		hooks := make([]Hook, 0, len(removed))
		for _, name := range removed {
			fmt.Fprintf(e.stdout, "deleted %s\n", name)
			hooks = append(hooks, Hook{Name: postscript.Delete, Args: []string{name}})
		}
		return hooks, nil
	}
}

func findClient(db ledger.Database, name string) (ledger.Client, error) {
	clients, err := db.ListClients()
	if err != nil {
		return ledger.Client{}, err
	}
	for _, c := range clients {
		if c.Name == name {
			return c, nil
		}
	}
	return ledger.Client{}, &ledger.NotFoundError{Name: name}
}
