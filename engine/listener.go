package engine

import "github.com/s0up4200/moviecat/catalog"

// Listener receives engine signals. The engine never calls two listener
// methods at the same time and holds no lock while calling one, so callbacks
// may read state and call LoadMore directly. Signals raised from inside a
// callback are delivered after it returns.
type Listener interface {
	// OnDataUpdated fires after cached data is painted and again once the
	// initial load settles.
	OnDataUpdated()

	// OnCategoryUpdated fires when a load-more extends a category.
	OnCategoryUpdated(category catalog.Category)

	// OnError carries a human readable failure message.
	OnError(message string)

	// OnLoadingStateChanged brackets an initial load.
	OnLoadingStateChanged(loading bool)
}

// ListenerFuncs adapts optional functions to the Listener interface.
// Nil fields are skipped.
type ListenerFuncs struct {
	DataUpdated         func()
	CategoryUpdated     func(category catalog.Category)
	Error               func(message string)
	LoadingStateChanged func(loading bool)
}

var _ Listener = ListenerFuncs{}

func (f ListenerFuncs) OnDataUpdated() {
	if f.DataUpdated != nil {
		f.DataUpdated()
	}
}

func (f ListenerFuncs) OnCategoryUpdated(category catalog.Category) {
	if f.CategoryUpdated != nil {
		f.CategoryUpdated(category)
	}
}

func (f ListenerFuncs) OnError(message string) {
	if f.Error != nil {
		f.Error(message)
	}
}

func (f ListenerFuncs) OnLoadingStateChanged(loading bool) {
	if f.LoadingStateChanged != nil {
		f.LoadingStateChanged(loading)
	}
}
