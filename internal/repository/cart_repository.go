package repository

import (
	"context"

	"topupstore/internal/domain/model"
)

type CartRepository interface {
	// 明細込みで取得。無ければ ErrNotFound
	FindByCustomerID(ctx context.Context, customerID string) (model.Cart, error)
	// トランザクション内で行ロックして取得
	LockByCustomerID(ctx context.Context, customerID string) (model.Cart, error)
	// カートと明細を丸ごと置き換える（無ければ作る）
	Save(ctx context.Context, cart *model.Cart) error
	Delete(ctx context.Context, cartID string) error
}

// カートの読み取りキャッシュ。
// 書き込みは世代つき: Delete で世代が進むので、読み始めより後に消されたら書かない。
type CartCache interface {
	// 未登録なら nil, nil
	Get(ctx context.Context, customerID string) (*model.Cart, error)
	// 現在の世代。DBを読む前に取る
	Version(ctx context.Context, customerID string) (int64, error)
	// 世代が version のままのときだけ保存。進んでいたら何もせず nil
	SetIfVersion(ctx context.Context, customerID string, version int64, cart *model.Cart) error
	// 値を消して世代を進める
	Delete(ctx context.Context, customerID string) error
}
