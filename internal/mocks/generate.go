package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/possession --output domain/possession --outpkg possessionmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name GameTx --dir ../domain/possession --output domain/possession --outpkg possessionmock --filename game_tx_mock.go
