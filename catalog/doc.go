// Package catalog keeps the WooCommerce catalog in line with Automater.pl.
//
// Automater products are imported as terms of the global product attribute
// "automater_product": the term slug is the Automater product ID and the term
// name is the product name. WooCommerce products carrying that attribute are
// linked to the Automater product and receive its stock level.
//
// # Usage
//
//	importer := catalog.NewImporter(automaterClient, storeClient, logger,
//		catalog.WithFilter(productFilter))
//	result, err := importer.Import(ctx)
//
//	updater := catalog.NewStockUpdater(automaterClient, storeClient, logger,
//		catalog.WithConcurrency(8))
//	stock, err := updater.Update(ctx)
//
//	scheduler := catalog.NewScheduler(updater, 5*time.Minute, logger)
//	go scheduler.Run(ctx)
package catalog
