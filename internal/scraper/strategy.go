package scraper

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// ContainerStrategy locates the elements that each hold one event listing.
type ContainerStrategy interface {
	Name() string
	Containers(doc *goquery.Document) *goquery.Selection
}

// SelectorStrategy matches containers with a single CSS selector.
type SelectorStrategy struct {
	Selector string
}

// Name returns the selector itself.
func (s SelectorStrategy) Name() string {
	return s.Selector
}

// Containers returns every element matching the selector, in document order.
func (s SelectorStrategy) Containers(doc *goquery.Document) *goquery.Selection {
	return doc.Find(s.Selector)
}

// DefaultStrategies returns the container layouts seen on the listing site,
// newest first.
func DefaultStrategies() []ContainerStrategy {
	return []ContainerStrategy{
		SelectorStrategy{Selector: "div.event-item"},
		SelectorStrategy{Selector: "li.event-list-item"},
		SelectorStrategy{Selector: "article.event"},
	}
}

// findContainers evaluates strategies in order and returns the first non-empty
// match set along with the name of the strategy that produced it.
// A strategy that panics is treated as matching nothing.
func findContainers(doc *goquery.Document, strategies []ContainerStrategy) (*goquery.Selection, string, error) {
	var errs []error
	for _, strategy := range strategies {
		sel, err := tryStrategy(doc, strategy)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if sel != nil && sel.Length() > 0 {
			return sel, strategy.Name(), nil
		}
	}
	if len(errs) > 0 {
		return nil, "", fmt.Errorf("no containers found: %d strategies failed, first: %w", len(errs), errs[0])
	}
	return nil, "", nil
}

func tryStrategy(doc *goquery.Document, strategy ContainerStrategy) (sel *goquery.Selection, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("strategy %s: %v", strategy.Name(), r)
		}
	}()
	return strategy.Containers(doc), nil
}
