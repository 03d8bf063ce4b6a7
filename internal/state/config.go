package state

import (
	"path/filepath"

	"github.com/hashicorp/hcl"
	"github.com/juju/errors"
	"github.com/vendsim/vender/currency"
	"github.com/vendsim/vender/helpers"
	"github.com/vendsim/vender/internal/machine"
	"github.com/vendsim/vender/log2"
	ui_config "github.com/vendsim/vender/internal/ui/config"
	tele_config "github.com/vendsim/vender/tele/config"
)

type Config struct {
	// includeSeen contains absolute paths to prevent include loops
	includeSeen map[string]struct{}
	// only used for Unmarshal, do not access
	XXX_Include []ConfigSource `hcl:"include"`

	Money struct {
		Scale int          `hcl:"scale"`
		Cash  []CashConfig `hcl:"cash"`
	} `hcl:"money"`
	Catalog struct {
		Drinks []DrinkConfig `hcl:"drink"`
	} `hcl:"catalog"`
	Activity struct {
		MaxLines int `hcl:"max_lines"`
	} `hcl:"activity"`
	Engine struct {
		Aliases []Alias  `hcl:"alias"`
		OnBoot  []string `hcl:"on_boot"`
	} `hcl:"engine"`
	Persist struct {
		Root string `hcl:"root"`
	} `hcl:"persist"`
	Tele tele_config.Config `hcl:"tele"`
	UI   ui_config.Config   `hcl:"ui"`
}

type ConfigSource struct {
	Name     string `hcl:"name,key"`
	Optional bool   `hcl:"optional"`
}

type Alias struct {
	Name     string `hcl:"name,key"`
	Scenario string `hcl:"scenario"`
}

// cash "1000" { count = 6 }
type CashConfig struct {
	Nominal string `hcl:"nominal,key"`
	Count   int    `hcl:"count"`
}

// drink "cola" { name = "Cola" price = 1100 stock = 5 }
// Omitted attributes keep default catalog values.
type DrinkConfig struct {
	Key   string `hcl:"key,key"`
	Name  string `hcl:"name"`
	Price int    `hcl:"price"`
	Stock *int   `hcl:"stock"`
}

func (c *Config) ScaleI(i int) currency.Amount {
	return currency.Amount(i) * currency.Amount(c.Money.Scale)
}

// MachineConfig applies config on top of default catalog and cash inventory.
func (c *Config) MachineConfig() (machine.Config, error) {
	mc := machine.DefaultConfig()
	mc.ActivityMax = c.Activity.MaxLines
	errs := make([]error, 0)

	for _, x := range c.Money.Cash {
		d, err := currency.ParseNominalString(x.Nominal)
		if err != nil {
			errs = append(errs, errors.Annotate(err, "config money.cash"))
			continue
		}
		if x.Count < 0 {
			errs = append(errs, errors.NotValidf("config money.cash nominal=%s count=%d", x.Nominal, x.Count))
			continue
		}
		mc.CashInventory[d] = uint32(x.Count)
	}

	for _, x := range c.Catalog.Drinks {
		id, err := machine.ParseDrinkId(x.Key)
		if err != nil {
			errs = append(errs, errors.Annotate(err, "config catalog.drink"))
			continue
		}
		drink := &mc.Catalog[id]
		if x.Name != "" {
			drink.Name = x.Name
		}
		if x.Price < 0 {
			errs = append(errs, errors.NotValidf("config catalog.drink=%s price=%d", x.Key, x.Price))
		} else if x.Price > 0 {
			drink.Price = c.ScaleI(x.Price)
		}
		if x.Stock != nil {
			if *x.Stock < 0 {
				errs = append(errs, errors.NotValidf("config catalog.drink=%s stock=%d", x.Key, *x.Stock))
			} else {
				drink.Stock = uint32(*x.Stock)
			}
		}
	}
	return mc, helpers.FoldErrors(errs)
}

func (c *Config) read(log *log2.Log, fs FullReader, source ConfigSource, errs *[]error) {
	norm := fs.Normalize(source.Name)
	if _, ok := c.includeSeen[norm]; ok {
		*errs = append(*errs, errors.Errorf("config duplicate source=%s", source.Name))
		return
	}
	log.Debugf("config reading source='%s' path=%s", source.Name, norm)
	c.includeSeen[source.Name] = struct{}{}
	c.includeSeen[norm] = struct{}{}

	bs, err := fs.ReadAll(norm)
	if bs == nil && err == nil {
		if !source.Optional {
			err = errors.NotFoundf("config required name=%s path=%s", source.Name, norm)
			*errs = append(*errs, err)
		}
		return
	}
	if err != nil {
		*errs = append(*errs, errors.Annotatef(err, "config source=%s", source.Name))
		return
	}

	err = hcl.Unmarshal(bs, c)
	if err != nil {
		err = errors.Annotatef(err, "config unmarshal source=%s content='%s'", source.Name, string(bs))
		*errs = append(*errs, err)
		return
	}

	var includes []ConfigSource
	includes, c.XXX_Include = c.XXX_Include, nil
	for _, include := range includes {
		includeNorm := fs.Normalize(include.Name)
		if _, ok := c.includeSeen[includeNorm]; ok {
			err = errors.Errorf("config include loop: from=%s include=%s", source.Name, include.Name)
			*errs = append(*errs, err)
			continue
		}
		c.read(log, fs, include, errs)
	}
}

func ReadConfig(log *log2.Log, fs FullReader, names ...string) (*Config, error) {
	if len(names) == 0 {
		log.Fatal("code error [Must]ReadConfig() without names")
	}

	if osfs, ok := fs.(*OsFullReader); ok {
		dir, name := filepath.Split(names[0])
		if err := osfs.SetBase(dir); err != nil {
			return nil, err
		}
		names[0] = name
	}
	c := &Config{
		includeSeen: make(map[string]struct{}),
	}
	errs := make([]error, 0, 8)
	for _, name := range names {
		c.read(log, fs, ConfigSource{Name: name}, &errs)
	}
	return c, helpers.FoldErrors(errs)
}

func MustReadConfig(log *log2.Log, fs FullReader, names ...string) *Config {
	c, err := ReadConfig(log, fs, names...)
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	return c
}
