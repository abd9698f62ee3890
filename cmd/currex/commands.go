package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sejin-coding/currex-go/internal/api"
	"github.com/sejin-coding/currex-go/internal/app"
	"github.com/sejin-coding/currex-go/internal/domain"
)

type loginCommand struct {
	ctx      context.Context
	app      *app.App
	Provider string `long:"provider" choice:"kakao" choice:"google" default:"kakao" description:"login provider"`
}

func (c *loginCommand) Execute([]string) error {
	if c.app.Session.Authenticated() {
		fmt.Printf("already signed in as %s\n", c.app.Session.UserID())
		return nil
	}

	fmt.Printf("Open this URL in your browser to sign in:\n\n  %s\n\n", c.app.Login.AuthURL(c.app.Config.APIBaseURL, c.Provider))

	res, err := c.app.Login.Wait(c.ctx)
	if err != nil {
		return fmt.Errorf("wait for login: %w", err)
	}

	c.app.Session.Login(res.Token, res.UserID)
	fmt.Printf("signed in as %s\n", res.UserID)
	return nil
}

type logoutCommand struct {
	ctx context.Context
	app *app.App
}

func (c *logoutCommand) Execute([]string) error {
	if err := c.app.API.Logout(c.ctx); err != nil {
		return err
	}
	fmt.Println("signed out")
	return nil
}

type whoamiCommand struct {
	ctx context.Context
	app *app.App
}

func (c *whoamiCommand) Execute([]string) error {
	user, err := c.app.API.MyPage(c.ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", user.Nickname, user.UserID)
	if user.Address != "" {
		fmt.Printf("address: %s\n", user.Address)
	}
	return nil
}

type sellsCommand struct {
	ctx  context.Context
	app  *app.App
	Mine bool `long:"mine" description:"only listings you posted"`
}

func (c *sellsCommand) Execute([]string) error {
	var (
		listings []domain.Listing
		err      error
	)
	if c.Mine {
		listings, err = c.app.API.MySells(c.ctx)
	} else {
		listings, err = c.app.API.SellList(c.ctx)
	}
	if err != nil {
		return err
	}

	for _, l := range listings {
		fmt.Printf("%s  %-10s %.2f %s  %s  [%s]\n",
			l.SellID, l.Currency, l.Amount, l.Location, l.Status, l.Status.English())
	}
	fmt.Printf("%d listings\n", len(listings))
	return nil
}

type sellCommand struct {
	ctx  context.Context
	app  *app.App
	Args struct {
		SellID string `positional-arg-name:"sell-id" required:"yes"`
	} `positional-args:"yes"`
}

func (c *sellCommand) Execute([]string) error {
	l, err := c.app.API.SellDescription(c.ctx, c.Args.SellID)
	if err != nil {
		return err
	}

	fmt.Printf("%s %.2f (%.0f KRW)\n", l.Currency, l.Amount, l.KRWAmount)
	fmt.Printf("status:   %s (%s)\n", l.Status, l.Status.English())
	fmt.Printf("location: %s\n", l.Location)
	fmt.Printf("seller:   %s\n", l.SellerID)
	if l.Content != "" {
		fmt.Printf("\n%s\n", l.Content)
	}
	return nil
}

type postCommand struct {
	ctx      context.Context
	app      *app.App
	Currency string   `long:"currency" required:"yes" description:"ISO currency code, e.g. USD"`
	Amount   float64  `long:"amount" required:"yes" description:"amount of foreign currency"`
	Content  string   `long:"content" description:"listing description"`
	Location string   `long:"location" required:"yes" description:"meeting neighborhood"`
	Images   []string `long:"image" description:"banknote photo, repeatable"`
}

func (c *postCommand) Execute([]string) error {
	// Quote the KRW value so the listing shows a current price.
	krw, err := c.app.Rates.Convert(c.ctx, c.Currency, c.Amount)
	if err != nil {
		return fmt.Errorf("quote KRW value: %w", err)
	}

	in := api.RegisterSellInput{
		Currency:  c.Currency,
		Amount:    c.Amount,
		KRWAmount: float64(krw),
		Content:   c.Content,
		Location:  c.Location,
	}
	for _, path := range c.Images {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read image %s: %w", path, err)
		}
		in.Images = append(in.Images, api.Image{Name: filepath.Base(path), Data: data})
	}

	listing, err := c.app.API.RegisterSell(c.ctx, in)
	if err != nil {
		return err
	}
	fmt.Printf("listed %s: %s %.2f for %.0f KRW\n", listing.SellID, listing.Currency, listing.Amount, listing.KRWAmount)
	return nil
}

type statusCommand struct {
	ctx  context.Context
	app  *app.App
	Args struct {
		SellID string `positional-arg-name:"sell-id" required:"yes"`
		Status string `positional-arg-name:"status" required:"yes" description:"listed, negotiating, or completed"`
	} `positional-args:"yes"`
}

// statusAliases maps the CLI's English status names onto the backend values.
var statusAliases = map[string]domain.ListingStatus{
	"listed":      domain.StatusListed,
	"negotiating": domain.StatusNegotiating,
	"completed":   domain.StatusCompleted,
}

func (c *statusCommand) Execute([]string) error {
	next, ok := statusAliases[c.Args.Status]
	if !ok {
		parsed, err := domain.ParseListingStatus(c.Args.Status)
		if err != nil {
			return err
		}
		next = parsed
	}

	listing, err := c.app.API.SellDescription(c.ctx, c.Args.SellID)
	if err != nil {
		return err
	}

	updated, err := c.app.Trades.ChangeStatus(c.ctx, listing, next, c.app.Session.UserID())
	if err != nil {
		return err
	}
	fmt.Printf("%s is now %s (%s)\n", listing.SellID, updated, updated.English())
	return nil
}

type matchCommand struct {
	ctx       context.Context
	app       *app.App
	Currency  string  `long:"currency" required:"yes" description:"ISO currency code"`
	MinAmount float64 `long:"min" description:"minimum amount"`
	MaxAmount float64 `long:"max" required:"yes" description:"maximum amount"`
	Location  string  `long:"location" required:"yes" description:"your neighborhood"`
	Latitude  float64 `long:"lat" description:"your latitude"`
	Longitude float64 `long:"lng" description:"your longitude"`
}

func (c *matchCommand) Execute([]string) error {
	req := api.BuyRequest{
		Currency:     c.Currency,
		MinAmount:    c.MinAmount,
		MaxAmount:    c.MaxAmount,
		UserLocation: c.Location,
		Latitude:     c.Latitude,
		Longitude:    c.Longitude,
	}
	if err := c.app.API.RequestBuy(c.ctx, req); err != nil {
		return err
	}

	matches, err := c.app.API.MatchSellers(c.ctx, req)
	if err != nil {
		return err
	}

	for _, m := range matches {
		fmt.Printf("%.1fkm  %s  %s %.2f  %s\n", m.Distance, m.SellID, m.Currency, m.Amount, m.Location)
	}
	fmt.Printf("%d sellers matched\n", len(matches))
	return nil
}

type chatCommand struct {
	ctx  context.Context
	app  *app.App
	Args struct {
		RoomID string `positional-arg-name:"room-id" required:"yes"`
	} `positional-args:"yes"`
}

func (c *chatCommand) Execute([]string) error {
	room, err := c.app.Chat.Join(c.ctx, c.Args.RoomID)
	if err != nil {
		return err
	}
	defer room.Close()

	userID := c.app.Session.UserID()
	printMessage := func(m domain.Message) {
		who := m.SenderID
		if m.Mine(userID) {
			who = "me"
		}
		fmt.Printf("[%s] %s\n", who, m.Body)
	}

	// Join first, then fetch: messages arriving during the fetch are
	// buffered and merged into the transcript.
	history, err := room.History(c.ctx, c.app.API)
	if err != nil {
		return fmt.Errorf("load transcript: %w", err)
	}
	for _, m := range history {
		printMessage(m)
	}
	room.OnMessage(printMessage)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-c.ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if line == "" {
				continue
			}
			if link, ok := strings.CutPrefix(line, "/place "); ok {
				if err := room.SendLocation(c.ctx, userID, link); err != nil {
					return fmt.Errorf("send place: %w", err)
				}
				continue
			}
			if err := room.Send(c.ctx, userID, line); err != nil {
				return fmt.Errorf("send message: %w", err)
			}
		}
	}
}

type rateCommand struct {
	ctx  context.Context
	app  *app.App
	Args struct {
		Currency string  `positional-arg-name:"currency" required:"yes"`
		Amount   float64 `positional-arg-name:"amount"`
	} `positional-args:"yes"`
}

func (c *rateCommand) Execute([]string) error {
	if c.Args.Amount > 0 {
		krw, err := c.app.Rates.Convert(c.ctx, c.Args.Currency, c.Args.Amount)
		if err != nil {
			return err
		}
		fmt.Printf("%.2f %s = %d KRW\n", c.Args.Amount, c.Args.Currency, krw)
		return nil
	}

	rate, err := c.app.Rates.KRWRate(c.ctx, c.Args.Currency)
	if err != nil {
		return err
	}
	fmt.Printf("1 %s = %.2f KRW\n", c.Args.Currency, rate)
	return nil
}

type recognizeCommand struct {
	ctx  context.Context
	app  *app.App
	Args struct {
		Image string `positional-arg-name:"image" required:"yes"`
	} `positional-args:"yes"`
}

func (c *recognizeCommand) Execute([]string) error {
	f, err := os.Open(c.Args.Image)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	res, err := c.app.Bills.Predict(c.ctx, filepath.Base(c.Args.Image), f)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s (%.0f%% confidence)\n", res.Currency, res.Denomination, res.Confidence*100)
	return nil
}

type donationsCommand struct {
	ctx context.Context
	app *app.App
}

func (c *donationsCommand) Execute([]string) error {
	rank, err := c.app.API.DonationRank(c.ctx)
	if err != nil {
		return err
	}
	total, err := c.app.API.DonationTotal(c.ctx)
	if err != nil {
		return err
	}

	for i, entry := range rank {
		fmt.Printf("%2d. %-20s %.2f\n", i+1, entry.Name, entry.Amount)
	}
	fmt.Printf("total donated: %.2f\n", total)
	return nil
}
